// Package wallet connects the CLI to a browser wallet for sign-in and
// transaction signing, and provides a simulator for development.
package wallet

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/montybasquiart/sihiri-build/pkg/auth"
	"github.com/montybasquiart/sihiri-build/pkg/config"
	"github.com/montybasquiart/sihiri-build/pkg/contracts"
	"github.com/montybasquiart/sihiri-build/pkg/errors"
)

// Query parameters carrying the request token to the wallet page.
const (
	ParamAuthRequest = "authRequest"
	ParamTxRequest   = "txRequest"
)

// RequestClaims are the claims of an unsigned request token.
type RequestClaims struct {
	jwt.RegisteredClaims
	RedirectURI string               `json:"redirect_uri"`
	AppName     string               `json:"app_name,omitempty"`
	AppIcon     string               `json:"app_icon,omitempty"`
	Scopes      []string             `json:"scopes,omitempty"`
	Tx          *contracts.TxRequest `json:"tx,omitempty"`
}

// BrowserWallet hands requests to a wallet web page and waits for its
// redirect to a local callback server. Requests are serialized.
type BrowserWallet struct {
	cfg    config.WalletConfig
	logger *zap.Logger
	open   func(string) error
	mu     sync.Mutex
}

// NewBrowserWallet creates a wallet connector that opens the system browser.
func NewBrowserWallet(cfg config.WalletConfig, logger *zap.Logger) *BrowserWallet {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BrowserWallet{cfg: cfg, logger: logger, open: openBrowser}
}

// WithOpener replaces how the wallet URL is presented to the user.
func (w *BrowserWallet) WithOpener(open func(string) error) *BrowserWallet {
	w.open = open
	return w
}

// Authenticate asks the wallet to sign in and returns its auth-response token.
func (w *BrowserWallet) Authenticate(ctx context.Context) (string, error) {
	query, err := w.roundTrip(ctx, ParamAuthRequest, RequestClaims{Scopes: w.cfg.Scopes})
	if err != nil {
		return "", err
	}
	token := query.Get("authResponse")
	if token == "" {
		return "", errors.NewDecodeError("wallet callback", "callback is missing authResponse", nil)
	}
	return token, nil
}

// RequestTransaction asks the wallet to sign req.
func (w *BrowserWallet) RequestTransaction(ctx context.Context, req contracts.TxRequest) (*contracts.TxResponse, error) {
	query, err := w.roundTrip(ctx, ParamTxRequest, RequestClaims{Tx: &req})
	if err != nil {
		return nil, err
	}

	resp := &contracts.TxResponse{TxID: query.Get("txId")}
	if raw := query.Get("txRaw"); raw != "" {
		b, err := hex.DecodeString(strings.TrimPrefix(raw, "0x"))
		if err != nil {
			return nil, errors.NewDecodeError("wallet callback", "txRaw is not hex", err)
		}
		resp.TxRaw = b
	}
	if resp.TxID == "" && len(resp.TxRaw) == 0 {
		return nil, errors.NewDecodeError("wallet callback", "callback carries neither txId nor txRaw", nil)
	}
	return resp, nil
}

// roundTrip sends one request and blocks until the wallet redirects back or
// ctx ends. No timeout is applied here.
func (w *BrowserWallet) roundTrip(ctx context.Context, param string, claims RequestClaims) (url.Values, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	state := uuid.NewString()
	cs, err := newCallbackServer(state)
	if err != nil {
		return nil, errors.NewInternalError("failed to start wallet callback server", err)
	}
	defer cs.Close()

	claims.ID = state
	claims.IssuedAt = jwt.NewNumericDate(time.Now())
	claims.RedirectURI = cs.CallbackURL()
	claims.AppName = w.cfg.AppName
	claims.AppIcon = w.cfg.AppIcon

	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		return nil, errors.NewInternalError("failed to encode wallet request", err)
	}

	target, err := url.Parse(w.cfg.ConnectURL)
	if err != nil || target.Scheme == "" {
		return nil, errors.NewConfigurationError("wallet.connect_url", fmt.Sprintf("invalid wallet URL %q", w.cfg.ConnectURL))
	}
	q := target.Query()
	q.Set(param, token)
	target.RawQuery = q.Encode()

	w.logger.Info("Waiting for wallet",
		zap.String("request", param),
		zap.String("request_id", state),
		zap.String("callback", cs.CallbackURL()))
	if err := w.open(target.String()); err != nil {
		w.logger.Warn("Failed to open browser automatically; open the URL manually",
			zap.String("url", target.String()), zap.Error(err))
	}

	select {
	case query := <-cs.result:
		if query.Get("cancel") != "" || query.Get("error") != "" {
			w.logger.Info("Wallet request rejected", zap.String("request_id", state), zap.String("reason", query.Get("error")))
			return nil, errors.NewCancelledError(param)
		}
		return query, nil
	case err := <-cs.err:
		return nil, errors.NewInternalError("wallet callback failed", err)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// DecodeRequest parses an unsigned request token as produced by
// BrowserWallet. Wallet-side tooling and tests use it.
func DecodeRequest(token string) (*RequestClaims, error) {
	claims := &RequestClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, errors.NewDecodeError("wallet request", "", err)
	}
	return claims, nil
}

// openBrowser opens url in the default browser
func openBrowser(url string) error {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start"}
	case "darwin":
		cmd = "open"
	default: // "linux", "freebsd", "openbsd", "netbsd"
		cmd = "xdg-open"
	}
	args = append(args, url)

	return exec.Command(cmd, args...).Start()
}

var (
	_ auth.Authenticator = (*BrowserWallet)(nil)
	_ contracts.Wallet   = (*BrowserWallet)(nil)
)

