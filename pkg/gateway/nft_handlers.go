package gateway

import (
	"net/http"
	"strconv"

	"github.com/montybasquiart/sihiri-build/pkg/errors"
	"github.com/montybasquiart/sihiri-build/pkg/httputil"
	"github.com/montybasquiart/sihiri-build/pkg/metadata"
)

// TokenResponse summarises one minted token
type TokenResponse struct {
	TokenID        uint64 `json:"token_id"`
	Owner          string `json:"owner"`
	URI            string `json:"uri"`
	URL            string `json:"url,omitempty"`
	Creator        string `json:"creator"`
	RoyaltyPercent uint64 `json:"royalty_percent"`
	Transferable   bool   `json:"transferable"`
}

func (g *Gateway) nftLastHandler(w http.ResponseWriter, r *http.Request) {
	id, err := g.deps.Contracts.NFT().GetLastTokenID(r.Context())
	if err != nil {
		httputil.WriteErr(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]uint64{"last_token_id": id})
}

func (g *Gateway) nftByOwnerHandler(w http.ResponseWriter, r *http.Request) {
	owner, err := httputil.URLParamPrincipal(r, "address")
	if err != nil {
		httputil.WriteErr(w, r, err)
		return
	}
	ids, err := g.deps.Contracts.NFT().GetTokensByOwner(r.Context(), owner)
	if err != nil {
		httputil.WriteErr(w, r, err)
		return
	}
	if ids == nil {
		ids = []uint64{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"owner": owner, "tokens": ids})
}

// nftTokenHandler handles GET /v1/nft/{id}. A token without an owner does
// not exist.
func (g *Gateway) nftTokenHandler(w http.ResponseWriter, r *http.Request) {
	tokenID, err := httputil.URLParamUint64(r, "id")
	if err != nil {
		httputil.WriteErr(w, r, err)
		return
	}

	ctx := r.Context()
	nft := g.deps.Contracts.NFT()

	owner, err := nft.GetOwner(ctx, tokenID)
	if err != nil {
		httputil.WriteErr(w, r, err)
		return
	}
	if owner == "" {
		httputil.WriteErr(w, r, errors.NewNotFoundError("token", strconv.FormatUint(tokenID, 10)))
		return
	}

	resp := TokenResponse{TokenID: tokenID, Owner: owner}
	if resp.URI, err = nft.GetTokenURI(ctx, tokenID); err != nil {
		httputil.WriteErr(w, r, err)
		return
	}
	if resp.Creator, err = nft.GetCreator(ctx, tokenID); err != nil {
		httputil.WriteErr(w, r, err)
		return
	}
	if resp.RoyaltyPercent, err = nft.GetRoyaltyPercent(ctx, tokenID); err != nil {
		httputil.WriteErr(w, r, err)
		return
	}
	if resp.Transferable, err = nft.IsTransferable(ctx, tokenID); err != nil {
		httputil.WriteErr(w, r, err)
		return
	}
	resp.URL = g.deps.Storage.ResolveURL(resp.URI)

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// nftMetadataHandler handles GET /v1/nft/{id}/metadata by following the
// token URI into storage.
func (g *Gateway) nftMetadataHandler(w http.ResponseWriter, r *http.Request) {
	tokenID, err := httputil.URLParamUint64(r, "id")
	if err != nil {
		httputil.WriteErr(w, r, err)
		return
	}

	uri, err := g.deps.Contracts.NFT().GetTokenURI(r.Context(), tokenID)
	if err != nil {
		httputil.WriteErr(w, r, err)
		return
	}
	if uri == "" {
		httputil.WriteErr(w, r, errors.NewNotFoundError("token", strconv.FormatUint(tokenID, 10)))
		return
	}

	data, err := g.deps.Storage.Fetch(r.Context(), uri)
	if err != nil {
		httputil.WriteErr(w, r, err)
		return
	}
	doc, err := metadata.Decode(data)
	if err != nil {
		httputil.WriteErr(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, doc)
}

func (g *Gateway) nftOwnedByHandler(w http.ResponseWriter, r *http.Request) {
	tokenID, err := httputil.URLParamUint64(r, "id")
	if err != nil {
		httputil.WriteErr(w, r, err)
		return
	}
	address, err := httputil.URLParamPrincipal(r, "address")
	if err != nil {
		httputil.WriteErr(w, r, err)
		return
	}
	owns, err := g.deps.Contracts.NFT().OwnsToken(r.Context(), tokenID, address)
	if err != nil {
		httputil.WriteErr(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"token_id": tokenID,
		"address":  address,
		"owns":     owns,
	})
}
