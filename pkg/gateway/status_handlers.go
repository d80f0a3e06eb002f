package gateway

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/montybasquiart/sihiri-build/pkg/httputil"
	"github.com/montybasquiart/sihiri-build/pkg/logging"
	"github.com/montybasquiart/sihiri-build/pkg/stacks"
)

// healthResponse is the JSON structure used by healthHandler
type healthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
	Uptime    string    `json:"uptime"`
	Network   string    `json:"network"`
}

func (g *Gateway) healthHandler(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		StartedAt: g.startedAt,
		Uptime:    time.Since(g.startedAt).String(),
		Network:   g.deps.Registry.Active().Name,
	})
}

func (g *Gateway) versionHandler(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"version": g.version})
}

// statusHandler aggregates server uptime, the active network and the health
// of the node and storage backend. Upstream failures are reported in the
// body, not as an error status.
func (g *Gateway) statusHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var node *stacks.NodeInfo
	nodeErr := ""
	if info, err := g.deps.Node.Info(ctx); err == nil {
		node = info
	} else {
		nodeErr = err.Error()
		g.logger.ComponentWarn(logging.ComponentGateway, "failed to fetch node info", zap.Error(err))
	}

	storageStatus := "ok"
	if err := g.deps.Storage.Health(ctx); err != nil {
		storageStatus = err.Error()
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"server": map[string]any{
			"started_at": g.startedAt,
			"uptime":     time.Since(g.startedAt).String(),
			"version":    g.version,
		},
		"network":    g.deps.Registry.Active(),
		"contracts":  g.deps.Registry.Contracts(g.deps.Registry.Active().Name),
		"node":       node,
		"node_error": nodeErr,
		"storage":    storageStatus,
	})
}
