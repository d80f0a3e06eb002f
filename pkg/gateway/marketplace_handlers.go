package gateway

import (
	"context"
	"net/http"
	"strconv"

	"github.com/montybasquiart/sihiri-build/pkg/contracts"
	"github.com/montybasquiart/sihiri-build/pkg/errors"
	"github.com/montybasquiart/sihiri-build/pkg/httputil"
)

func (g *Gateway) listingHandler(w http.ResponseWriter, r *http.Request) {
	g.recordByID(w, r, "listing", g.deps.Contracts.Marketplace().GetListing)
}

func (g *Gateway) auctionHandler(w http.ResponseWriter, r *http.Request) {
	g.recordByID(w, r, "auction", g.deps.Contracts.Marketplace().GetAuction)
}

func (g *Gateway) highestBidHandler(w http.ResponseWriter, r *http.Request) {
	g.recordByID(w, r, "bid", g.deps.Contracts.Marketplace().GetHighestBid)
}

func (g *Gateway) sellerListingsHandler(w http.ResponseWriter, r *http.Request) {
	g.idsByPrincipal(w, r, "listings", g.deps.Contracts.Marketplace().GetListingsBySeller)
}

func (g *Gateway) sellerAuctionsHandler(w http.ResponseWriter, r *http.Request) {
	g.idsByPrincipal(w, r, "auctions", g.deps.Contracts.Marketplace().GetAuctionsBySeller)
}

func (g *Gateway) tokenListedHandler(w http.ResponseWriter, r *http.Request) {
	tokenID, err := httputil.URLParamUint64(r, "id")
	if err != nil {
		httputil.WriteErr(w, r, err)
		return
	}
	listed, err := g.deps.Contracts.Marketplace().IsTokenListed(r.Context(), tokenID)
	if err != nil {
		httputil.WriteErr(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"token_id": tokenID, "listed": listed})
}

// recordByID serves a tuple looked up by the {id} path parameter. An absent
// tuple is a 404.
func (g *Gateway) recordByID(w http.ResponseWriter, r *http.Request, resource string, get func(ctx context.Context, id uint64) (contracts.Record, error)) {
	id, err := httputil.URLParamUint64(r, "id")
	if err != nil {
		httputil.WriteErr(w, r, err)
		return
	}
	rec, err := get(r.Context(), id)
	if err != nil {
		httputil.WriteErr(w, r, err)
		return
	}
	if rec == nil {
		httputil.WriteErr(w, r, errors.NewNotFoundError(resource, strconv.FormatUint(id, 10)))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

// idsByPrincipal serves an id list looked up by the {address} path parameter.
func (g *Gateway) idsByPrincipal(w http.ResponseWriter, r *http.Request, key string, get func(ctx context.Context, address string) ([]uint64, error)) {
	address, err := httputil.URLParamPrincipal(r, "address")
	if err != nil {
		httputil.WriteErr(w, r, err)
		return
	}
	ids, err := get(r.Context(), address)
	if err != nil {
		httputil.WriteErr(w, r, err)
		return
	}
	if ids == nil {
		ids = []uint64{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"address": address, key: ids})
}
