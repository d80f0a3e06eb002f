package gateway

import (
	"math/big"
	"net/http"

	"github.com/montybasquiart/sihiri-build/pkg/httputil"
)

// EarningsResponse reports micro-STX earnings. Amounts are decimal strings
// because Clarity uints exceed the JSON number range.
type EarningsResponse struct {
	Creator string  `json:"creator"`
	TokenID *uint64 `json:"token_id,omitempty"`
	Amount  string  `json:"amount"`
}

func (g *Gateway) lastPaymentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := g.deps.Contracts.Royalty().GetLastPaymentID(r.Context())
	if err != nil {
		httputil.WriteErr(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]uint64{"last_payment_id": id})
}

func (g *Gateway) paymentHandler(w http.ResponseWriter, r *http.Request) {
	g.recordByID(w, r, "payment", g.deps.Contracts.Royalty().GetPaymentDetails)
}

func (g *Gateway) creatorEarningsHandler(w http.ResponseWriter, r *http.Request) {
	creator, err := httputil.URLParamPrincipal(r, "address")
	if err != nil {
		httputil.WriteErr(w, r, err)
		return
	}
	amount, err := g.deps.Contracts.Royalty().GetCreatorEarnings(r.Context(), creator)
	if err != nil {
		httputil.WriteErr(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, EarningsResponse{Creator: creator, Amount: formatAmount(amount)})
}

func (g *Gateway) creatorTokenEarningsHandler(w http.ResponseWriter, r *http.Request) {
	creator, err := httputil.URLParamPrincipal(r, "address")
	if err != nil {
		httputil.WriteErr(w, r, err)
		return
	}
	tokenID, err := httputil.URLParamUint64(r, "id")
	if err != nil {
		httputil.WriteErr(w, r, err)
		return
	}
	amount, err := g.deps.Contracts.Royalty().GetCreatorTokenEarnings(r.Context(), creator, tokenID)
	if err != nil {
		httputil.WriteErr(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, EarningsResponse{Creator: creator, TokenID: &tokenID, Amount: formatAmount(amount)})
}

func formatAmount(n *big.Int) string {
	if n == nil {
		return "0"
	}
	return n.String()
}
