package publish

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/montybasquiart/sihiri-build/pkg/clarity"
	"github.com/montybasquiart/sihiri-build/pkg/config"
	"github.com/montybasquiart/sihiri-build/pkg/contracts"
	"github.com/montybasquiart/sihiri-build/pkg/errors"
	"github.com/montybasquiart/sihiri-build/pkg/metadata"
	"github.com/montybasquiart/sihiri-build/pkg/registry"
	"github.com/montybasquiart/sihiri-build/pkg/stacks"
	"github.com/montybasquiart/sihiri-build/pkg/storage"
	"github.com/montybasquiart/sihiri-build/pkg/wallet"
)

const creator = "ST1THWXQ8368SDN2MJGE4BMDKMCHZ2GSVTSQDA7QF"

var pngMedia = append([]byte("\x89PNG\r\n\x1a\n"), []byte("not really an image")...)

type nopNode struct{}

func (nopNode) CallReadOnly(ctx context.Context, contract clarity.Principal, function, sender string, args []clarity.Value) (*stacks.ReadOnlyResult, error) {
	return nil, errors.NewNetworkError("stacks-node", "", 0, nil)
}

func (nopNode) BroadcastTransaction(ctx context.Context, raw []byte) (string, error) {
	return "", errors.NewNetworkError("stacks-node", "", 0, nil)
}

func (nopNode) Info(ctx context.Context) (*stacks.NodeInfo, error) {
	return &stacks.NodeInfo{}, nil
}

type session map[string]string

func (s session) Address(network string) (string, bool) {
	a, ok := s[network]
	return a, ok
}

type fixture struct {
	backend   *storage.MemoryBackend
	sim       *wallet.SimulatedWallet
	publisher *Publisher
}

func newFixture(t *testing.T, signedIn bool) *fixture {
	t.Helper()
	cfg := config.Default()
	cfg.Network = config.NetworkLocal
	reg, err := registry.New(cfg, zap.NewNop())
	require.NoError(t, err)

	sim, err := wallet.NewSimulatedWallet(nil)
	require.NoError(t, err)

	var sess contracts.SessionReader = session{}
	if signedIn {
		sess = session{"testnet": creator}
	}
	adapter := contracts.NewAdapter(reg, nopNode{}, sim, sess, nil)

	backend := storage.NewMemoryBackend()
	store := storage.NewClient(storage.Config{BackendName: storage.BackendMemory}, backend, nil, nil)
	clock := func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	return &fixture{
		backend:   backend,
		sim:       sim,
		publisher: New(store, adapter, metadata.NewAssembler(clock), nil),
	}
}

func validRequest() Request {
	return Request{
		Media:       pngMedia,
		MediaName:   "cover.png",
		Name:        "Sunrise",
		Description: "First light over the bay",
		Tags:        SplitTags("photo, ocean ,,dawn"),
		License:     "CC0",
	}
}

func TestPublish_MintsStoredMetadata(t *testing.T) {
	f := newFixture(t, true)

	res, err := f.publisher.Publish(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, 2, f.backend.Len())
	assert.Equal(t, "ipfs://"+res.MetadataCID.String(), res.MetadataURI)
	assert.Equal(t, metadata.MediaImage, res.Metadata.MediaType)
	assert.Equal(t, creator, res.Metadata.Creator)
	assert.Equal(t, res.MediaCID.URI(), res.Metadata.Image)
	assert.Empty(t, res.Metadata.AnimationURL)
	assert.Equal(t, []metadata.Attribute{
		{TraitType: TagTrait, Value: "photo"},
		{TraitType: TagTrait, Value: "ocean"},
		{TraitType: TagTrait, Value: "dawn"},
	}, res.Metadata.Attributes)

	stored, ok := f.backend.Get(res.MetadataCID)
	require.True(t, ok)
	doc, err := metadata.Decode(stored)
	require.NoError(t, err)
	assert.Equal(t, res.Metadata, doc)

	require.NotNil(t, res.Mint)
	assert.Equal(t, contracts.StatusBroadcast, res.Mint.Status)

	reqs := f.sim.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "mint", reqs[0].FunctionName)
	assert.Equal(t, "nft-ownership", reqs[0].ContractName)
	assert.Equal(t, creator, reqs[0].Sender)

	wantURI, err := clarity.EncodeHex(clarity.StringUTF8(res.MetadataURI))
	require.NoError(t, err)
	wantRoyalty, err := clarity.EncodeHex(clarity.NewUInt(DefaultRoyaltyPercent))
	require.NoError(t, err)
	assert.Equal(t, wantURI, reqs[0].FunctionArgs[0])
	assert.Equal(t, wantRoyalty, reqs[0].FunctionArgs[1])
}

func TestPublish_WalletRejection(t *testing.T) {
	f := newFixture(t, true)
	f.sim.Reject = true

	res, err := f.publisher.Publish(context.Background(), validRequest())
	require.NoError(t, err)
	require.NotNil(t, res.Mint)
	assert.Equal(t, contracts.StatusCancelled, res.Mint.Status)
	assert.Nil(t, res.Mint.Receipt)

	// Content stays stored and addressable.
	_, ok := f.backend.Get(res.MetadataCID)
	assert.True(t, ok)
}

func TestPublish_RejectsBeforeUpload(t *testing.T) {
	tooHigh := uint64(101)

	tests := []struct {
		name     string
		signedIn bool
		mutate   func(*Request)
		check    func(error) bool
		fields   []string
	}{
		{
			name:   "signed out",
			mutate: func(*Request) {},
			check:  errors.IsUnauthorized,
		},
		{
			name:     "missing name and description",
			signedIn: true,
			mutate:   func(r *Request) { r.Name, r.Description = "", "" },
			check:    errors.IsValidation,
			fields:   []string{"name", "description"},
		},
		{
			name:     "empty media",
			signedIn: true,
			mutate:   func(r *Request) { r.Media = nil },
			check:    errors.IsValidation,
			fields:   []string{"media"},
		},
		{
			name:     "unknown media type",
			signedIn: true,
			mutate:   func(r *Request) { r.MediaType = "hologram" },
			check:    errors.IsValidation,
		},
		{
			name:     "royalty above limit",
			signedIn: true,
			mutate:   func(r *Request) { r.RoyaltyPercent = &tooHigh },
			check:    errors.IsValidation,
			fields:   []string{"royaltyPercent"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.signedIn)
			req := validRequest()
			tt.mutate(&req)

			_, err := f.publisher.Publish(context.Background(), req)
			require.Error(t, err)
			assert.True(t, tt.check(err), "got %T: %v", err, err)
			if tt.fields != nil {
				var verr *errors.ValidationError
				require.True(t, errors.As(err, &verr))
				assert.Equal(t, tt.fields, verr.Fields())
			}
			assert.Equal(t, 0, f.backend.Len())
			assert.Empty(t, f.sim.Requests())
		})
	}
}

func TestPublish_AudioGetsAnimationURL(t *testing.T) {
	f := newFixture(t, true)
	req := validRequest()
	req.MediaType = metadata.MediaAudio

	res, err := f.publisher.Prepare(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, res.MediaCID.URI(), res.Metadata.AnimationURL)
	assert.Nil(t, res.Mint)
	assert.Empty(t, f.sim.Requests())
}

func TestDetectMediaType(t *testing.T) {
	tests := []struct {
		data []byte
		want metadata.MediaType
	}{
		{pngMedia, metadata.MediaImage},
		{[]byte("GIF89a...."), metadata.MediaImage},
		{[]byte("ID3\x03\x00\x00\x00"), metadata.MediaAudio},
		{[]byte("OggS\x00"), metadata.MediaAudio},
		{[]byte("plain text"), metadata.MediaOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectMediaType(tt.data), "%q", tt.data[:4])
	}
}
