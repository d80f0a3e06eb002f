package contracts

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/montybasquiart/sihiri-build/pkg/clarity"
	"github.com/montybasquiart/sihiri-build/pkg/config"
	"github.com/montybasquiart/sihiri-build/pkg/errors"
	"github.com/montybasquiart/sihiri-build/pkg/registry"
	"github.com/montybasquiart/sihiri-build/pkg/stacks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	deployer = "ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM"
	buyer    = "ST1THWXQ8368SDN2MJGE4BMDKMCHZ2GSVTSQDA7QF"
)

type readCall struct {
	contract string
	function string
	sender   string
	args     []clarity.Value
}

type fakeNode struct {
	mu        sync.Mutex
	result    *stacks.ReadOnlyResult
	err       error
	calls     []readCall
	broadcast [][]byte
}

func (n *fakeNode) CallReadOnly(ctx context.Context, contract clarity.Principal, function, sender string, args []clarity.Value) (*stacks.ReadOnlyResult, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, readCall{contract: contract.String(), function: function, sender: sender, args: args})
	if n.err != nil {
		return nil, n.err
	}
	return n.result, nil
}

func (n *fakeNode) BroadcastTransaction(ctx context.Context, raw []byte) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.broadcast = append(n.broadcast, raw)
	return "0xabc123", nil
}

func (n *fakeNode) Info(ctx context.Context) (*stacks.NodeInfo, error) {
	return &stacks.NodeInfo{}, nil
}

func (n *fakeNode) lastCall() readCall {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls[len(n.calls)-1]
}

type fakeWallet struct {
	resp     *TxResponse
	err      error
	requests []TxRequest
}

func (w *fakeWallet) RequestTransaction(ctx context.Context, req TxRequest) (*TxResponse, error) {
	w.requests = append(w.requests, req)
	if w.err != nil {
		return nil, w.err
	}
	return w.resp, nil
}

type fakeSession map[string]string

func (s fakeSession) Address(network string) (string, bool) {
	addr, ok := s[network]
	return addr, ok
}

func okResult(t *testing.T, v clarity.Value) *stacks.ReadOnlyResult {
	t.Helper()
	h, err := clarity.EncodeHex(v)
	require.NoError(t, err)
	return &stacks.ReadOnlyResult{Okay: true, Result: h}
}

func newTestAdapter(t *testing.T, node *fakeNode, wallet Wallet, session SessionReader) *Adapter {
	t.Helper()
	cfg := config.Default()
	cfg.Network = config.NetworkLocal
	reg, err := registry.New(cfg, zap.NewNop())
	require.NoError(t, err)
	a := NewAdapter(reg, node, wallet, session, zap.NewNop())
	a.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return a
}

func TestCallReadOnlySenderPrecedence(t *testing.T) {
	ctx := context.Background()

	t.Run("override wins", func(t *testing.T) {
		node := &fakeNode{result: okResult(t, clarity.Bool(true))}
		a := newTestAdapter(t, node, nil, fakeSession{"testnet": buyer})
		_, err := a.CallReadOnly(ctx, config.ContractIdentity, "is-verified", nil, deployer)
		require.NoError(t, err)
		assert.Equal(t, deployer, node.lastCall().sender)
	})

	t.Run("session address on active network", func(t *testing.T) {
		node := &fakeNode{result: okResult(t, clarity.Bool(true))}
		a := newTestAdapter(t, node, nil, fakeSession{"testnet": buyer})
		_, err := a.CallReadOnly(ctx, config.ContractIdentity, "is-verified", nil, "")
		require.NoError(t, err)
		assert.Equal(t, buyer, node.lastCall().sender)
	})

	t.Run("contract address when signed out", func(t *testing.T) {
		node := &fakeNode{result: okResult(t, clarity.Bool(true))}
		a := newTestAdapter(t, node, nil, nil)
		_, err := a.CallReadOnly(ctx, config.ContractIdentity, "is-verified", nil, "")
		require.NoError(t, err)
		call := node.lastCall()
		assert.Equal(t, deployer, call.sender)
		assert.Equal(t, deployer+".identity", call.contract)
	})
}

func TestCallReadOnlyErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("contract failure", func(t *testing.T) {
		node := &fakeNode{result: &stacks.ReadOnlyResult{Okay: false, Cause: "Unchecked(NoSuchContract)"}}
		a := newTestAdapter(t, node, nil, nil)
		_, err := a.CallReadOnly(ctx, config.ContractNFTOwnership, "get-owner", []clarity.Value{clarity.NewUInt(1)}, "")
		require.Error(t, err)
		assert.True(t, errors.IsContract(err))
		assert.Equal(t, errors.CodeContractError, errors.GetErrorCode(err))
	})

	t.Run("undecodable result", func(t *testing.T) {
		node := &fakeNode{result: &stacks.ReadOnlyResult{Okay: true, Result: "0xff"}}
		a := newTestAdapter(t, node, nil, nil)
		_, err := a.CallReadOnly(ctx, config.ContractNFTOwnership, "get-last-token-id", nil, "")
		assert.True(t, errors.IsDecode(err))
	})

	t.Run("transport failure passes through", func(t *testing.T) {
		node := &fakeNode{err: errors.NewNetworkError("stacks-node", "", 0, nil)}
		a := newTestAdapter(t, node, nil, nil)
		_, err := a.CallReadOnly(ctx, config.ContractNFTOwnership, "get-last-token-id", nil, "")
		assert.True(t, errors.IsNetwork(err))
		assert.Len(t, node.calls, 1, "adapters never retry")
	})

	t.Run("unknown contract", func(t *testing.T) {
		a := newTestAdapter(t, &fakeNode{}, nil, nil)
		_, err := a.CallReadOnly(ctx, "gallery", "get-owner", nil, "")
		assert.True(t, errors.IsConfiguration(err))
	})
}

func TestCallReadOnlyNative(t *testing.T) {
	owner := clarity.MustParsePrincipal(buyer)
	node := &fakeNode{result: okResult(t, clarity.Ok(clarity.Some(owner)))}
	a := newTestAdapter(t, node, nil, nil)

	got, err := a.CallReadOnly(context.Background(), config.ContractNFTOwnership, "get-owner", []clarity.Value{clarity.NewUInt(7)}, "")
	require.NoError(t, err)
	assert.Equal(t, buyer, got)
	assert.Equal(t, "u7", node.lastCall().args[0].Repr())
}

func TestSubmitCallCancelled(t *testing.T) {
	wallet := &fakeWallet{err: errors.NewCancelledError("transaction")}
	node := &fakeNode{}
	a := newTestAdapter(t, node, wallet, fakeSession{"testnet": buyer})

	req, err := a.Prepare(config.ContractNFTOwnership, "mint",
		[]clarity.Value{clarity.StringUTF8("ipfs://bafy"), clarity.NewUInt(10), clarity.Bool(true)}, nil)
	require.NoError(t, err)

	var results, cancels int
	err = a.Submit(context.Background(), req, Callbacks{
		OnResult: func(Receipt) { results++ },
		OnCancel: func() { cancels++ },
	})
	require.NoError(t, err)
	assert.Equal(t, 0, results, "OnResult must not fire on rejection")
	assert.Equal(t, 1, cancels, "OnCancel fires exactly once")
	assert.Empty(t, node.broadcast)
}

func TestSubmitCallBroadcast(t *testing.T) {
	ctx := context.Background()

	t.Run("wallet returns signed transaction", func(t *testing.T) {
		wallet := &fakeWallet{resp: &TxResponse{TxRaw: []byte{0x80, 0x01}}}
		node := &fakeNode{}
		a := newTestAdapter(t, node, wallet, fakeSession{"testnet": buyer})

		res, err := a.SubmitCall(ctx, config.ContractNFTOwnership, "transfer",
			[]clarity.Value{clarity.NewUInt(1), clarity.MustParsePrincipal(deployer)}, nil)
		require.NoError(t, err)
		assert.Equal(t, StatusBroadcast, res.Status)
		assert.Equal(t, "0xabc123", res.Receipt.TxID)
		assert.Equal(t, deployer+".nft-ownership", res.Receipt.Contract)
		assert.Len(t, node.broadcast, 1)

		require.Len(t, wallet.requests, 1)
		sent := wallet.requests[0]
		assert.Equal(t, "nft-ownership", sent.ContractName)
		assert.Equal(t, buyer, sent.Sender)
		assert.Equal(t, []string{"0x0100000000000000000000000000000001", sent.FunctionArgs[1]}, sent.FunctionArgs)
	})

	t.Run("wallet broadcasts itself", func(t *testing.T) {
		wallet := &fakeWallet{resp: &TxResponse{TxID: "0xfeed"}}
		node := &fakeNode{}
		a := newTestAdapter(t, node, wallet, nil)

		var got []Receipt
		var cancels int
		req, err := a.Prepare(config.ContractIdentity, "register-profile", []clarity.Value{clarity.StringUTF8("ana")}, nil)
		require.NoError(t, err)
		err = a.Submit(ctx, req, Callbacks{
			OnResult: func(r Receipt) { got = append(got, r) },
			OnCancel: func() { cancels++ },
		})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, 0, cancels)
		assert.Equal(t, "0xfeed", got[0].TxID)
		assert.Empty(t, node.broadcast)
	})

	t.Run("other wallet errors are returned", func(t *testing.T) {
		wallet := &fakeWallet{err: errors.NewNetworkError("wallet", "", 0, nil)}
		a := newTestAdapter(t, &fakeNode{}, wallet, nil)

		fired := false
		req, err := a.Prepare(config.ContractIdentity, "register-profile", nil, nil)
		require.NoError(t, err)
		err = a.Submit(ctx, req, Callbacks{
			OnResult: func(Receipt) { fired = true },
			OnCancel: func() { fired = true },
		})
		assert.True(t, errors.IsNetwork(err))
		assert.False(t, fired)
	})
}

func TestPaymentBearingRequiresPostCondition(t *testing.T) {
	wallet := &fakeWallet{resp: &TxResponse{TxID: "0x01"}}
	a := newTestAdapter(t, &fakeNode{}, wallet, fakeSession{"testnet": buyer})
	args := []clarity.Value{clarity.NewUInt(1), clarity.NewUInt(500)}

	_, err := a.SubmitCall(context.Background(), config.ContractMarketplace, "place-bid", args, nil)
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))

	var verr *errors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields(), "postConditions")
	assert.Empty(t, wallet.requests, "wallet must not be asked")

	t.Run("unbounded code does not count", func(t *testing.T) {
		pcs := []PostCondition{STXPostCondition(buyer, ConditionGreaterEqual, 500)}
		_, err := a.SubmitCall(context.Background(), config.ContractMarketplace, "place-bid", args, pcs)
		assert.True(t, errors.IsValidation(err))
	})

	t.Run("condition on another principal does not count", func(t *testing.T) {
		pcs := []PostCondition{STXPostCondition(deployer, ConditionLessEqual, 500)}
		_, err := a.SubmitCall(context.Background(), config.ContractMarketplace, "place-bid", args, pcs)
		assert.True(t, errors.IsValidation(err))
	})

	t.Run("bounded sender condition passes", func(t *testing.T) {
		pcs := []PostCondition{STXPostCondition(buyer, ConditionLessEqual, 500)}
		res, err := a.SubmitCall(context.Background(), config.ContractMarketplace, "place-bid", args, pcs)
		require.NoError(t, err)
		assert.Equal(t, StatusBroadcast, res.Status)
		require.Len(t, wallet.requests, 1)
		assert.Equal(t, PostConditionModeDeny, wallet.requests[0].PostConditionMode)
	})
}

func TestWrappers(t *testing.T) {
	ctx := context.Background()

	t.Run("get tokens by owner", func(t *testing.T) {
		node := &fakeNode{result: okResult(t, clarity.Ok(clarity.List{clarity.NewUInt(1), clarity.NewUInt(4)}))}
		a := newTestAdapter(t, node, nil, nil)
		ids, err := a.NFT().GetTokensByOwner(ctx, buyer)
		require.NoError(t, err)
		assert.Equal(t, []uint64{1, 4}, ids)
	})

	t.Run("owns token", func(t *testing.T) {
		node := &fakeNode{result: okResult(t, clarity.Ok(clarity.Some(clarity.MustParsePrincipal(buyer))))}
		a := newTestAdapter(t, node, nil, nil)
		owns, err := a.NFT().OwnsToken(ctx, 3, buyer)
		require.NoError(t, err)
		assert.True(t, owns)
		owns, err = a.NFT().OwnsToken(ctx, 3, deployer)
		require.NoError(t, err)
		assert.False(t, owns)
	})

	t.Run("err response becomes contract error", func(t *testing.T) {
		node := &fakeNode{result: okResult(t, clarity.Err(clarity.NewUInt(404)))}
		a := newTestAdapter(t, node, nil, nil)
		_, err := a.Marketplace().GetListing(ctx, 9)
		assert.True(t, errors.IsContract(err))
	})

	t.Run("listing record", func(t *testing.T) {
		node := &fakeNode{result: okResult(t, clarity.Some(clarity.Tuple{
			"price":  clarity.NewUInt(1000),
			"seller": clarity.MustParsePrincipal(deployer),
		}))}
		a := newTestAdapter(t, node, nil, nil)
		rec, err := a.Marketplace().GetListing(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, deployer, rec["seller"])
		price, ok := rec["price"].(*big.Int)
		require.True(t, ok)
		assert.Equal(t, int64(1000), price.Int64())
	})

	t.Run("creator earnings from tuple", func(t *testing.T) {
		node := &fakeNode{result: okResult(t, clarity.Tuple{"total-earnings": clarity.NewUInt(250)})}
		a := newTestAdapter(t, node, nil, nil)
		n, err := a.Royalty().GetCreatorEarnings(ctx, deployer)
		require.NoError(t, err)
		assert.Equal(t, int64(250), n.Int64())
	})

	t.Run("invalid principal argument", func(t *testing.T) {
		node := &fakeNode{}
		a := newTestAdapter(t, node, nil, nil)
		_, err := a.Identity().IsVerified(ctx, "not-an-address")
		assert.True(t, errors.IsValidation(err))
		assert.Empty(t, node.calls)
	})

	t.Run("buy listing caps outflow at price", func(t *testing.T) {
		wallet := &fakeWallet{resp: &TxResponse{TxID: "0x02"}}
		a := newTestAdapter(t, &fakeNode{}, wallet, fakeSession{"testnet": buyer})
		_, err := a.Marketplace().BuyListing(ctx, 5, 1500)
		require.NoError(t, err)
		require.Len(t, wallet.requests, 1)
		req := wallet.requests[0]
		require.Len(t, req.PostConditions, 1)
		assert.Equal(t, STXPostCondition(buyer, ConditionLessEqual, 1500), req.PostConditions[0])
		assert.Len(t, req.FunctionArgs, 3)
	})

	t.Run("direct payment needs a session", func(t *testing.T) {
		wallet := &fakeWallet{resp: &TxResponse{TxID: "0x03"}}
		a := newTestAdapter(t, &fakeNode{}, wallet, nil)
		_, err := a.Royalty().DirectPayment(ctx, deployer, 10, "tip", "thanks")
		assert.True(t, errors.IsUnauthorized(err))
		assert.Empty(t, wallet.requests)
	})

	t.Run("mint validates royalty", func(t *testing.T) {
		wallet := &fakeWallet{resp: &TxResponse{TxID: "0x04"}}
		a := newTestAdapter(t, &fakeNode{}, wallet, nil)
		_, err := a.NFT().Mint(ctx, "", 101, true)
		var verr *errors.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.ElementsMatch(t, []string{"metadataUri", "royaltyPercent"}, verr.Fields())
	})

	t.Run("register profile encodes lists", func(t *testing.T) {
		wallet := &fakeWallet{resp: &TxResponse{TxID: "0x05"}}
		a := newTestAdapter(t, &fakeNode{}, wallet, nil)
		_, err := a.Identity().RegisterProfile(ctx, ProfileInput{
			Username:    "ana",
			SocialLinks: []SocialLink{{Platform: "x", URL: "https://x.com/ana"}},
			Categories:  []string{"music"},
		})
		require.NoError(t, err)
		args := wallet.requests[0].FunctionArgs
		require.Len(t, args, 7)
		assert.Equal(t, "0x0b00000001", args[5][:12])
	})
}

func TestPostConditionValidate(t *testing.T) {
	nft, err := NFTPostCondition(buyer, deployer+".nft-ownership::sihiri-nft", clarity.NewUInt(1), ConditionSends)
	require.NoError(t, err)
	assert.NoError(t, nft.Validate())

	bad := STXPostCondition(buyer, ConditionSends, 10)
	assert.Error(t, bad.Validate())

	missing, err := NFTPostCondition(buyer, "", clarity.NewUInt(1), ConditionDoesNotSend)
	require.NoError(t, err)
	assert.Error(t, missing.Validate())

	readOnly := CallRequest{
		Contract:       registry.ContractReference{Address: deployer, OnChainName: "royalty"},
		Function:       "get-last-payment-id",
		PostConditions: []PostCondition{STXPostCondition(buyer, ConditionEqual, 1)},
		Mode:           ModeReadOnly,
	}
	assert.True(t, errors.IsValidation(readOnly.Validate()))
}
