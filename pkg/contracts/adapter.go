package contracts

import (
	"context"
	"time"

	"github.com/montybasquiart/sihiri-build/pkg/clarity"
	"github.com/montybasquiart/sihiri-build/pkg/errors"
	"github.com/montybasquiart/sihiri-build/pkg/registry"
	"github.com/montybasquiart/sihiri-build/pkg/stacks"
	"go.uber.org/zap"
)

// Adapter resolves, validates and dispatches contract calls
type Adapter struct {
	registry *registry.Registry
	node     stacks.NodeClient
	wallet   Wallet
	session  SessionReader
	logger   *zap.Logger
	now      func() time.Time
}

// NewAdapter creates a contract call adapter. wallet and session may be nil
// for read-only use.
func NewAdapter(reg *registry.Registry, node stacks.NodeClient, wallet Wallet, session SessionReader, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		registry: reg,
		node:     node,
		wallet:   wallet,
		session:  session,
		logger:   logger,
		now:      time.Now,
	}
}

// Registry returns the registry the adapter resolves against.
func (a *Adapter) Registry() *registry.Registry {
	return a.registry
}

// SessionAddress returns the signed-in address on the active network.
func (a *Adapter) SessionAddress() (string, bool) {
	if a.session == nil {
		return "", false
	}
	return a.session.Address(a.registry.Active().SessionKey())
}

// senderFor picks the read-only sender: explicit override, then the signed-in
// address, then the contract's own address.
func (a *Adapter) senderFor(ref registry.ContractReference, override string) string {
	if override != "" {
		return override
	}
	if addr, ok := a.SessionAddress(); ok && addr != "" {
		return addr
	}
	return ref.Address
}

// CallReadOnlyValue evaluates a read-only function and returns the raw value.
func (a *Adapter) CallReadOnlyValue(ctx context.Context, logicalName, function string, args []clarity.Value, senderOverride string) (clarity.Value, error) {
	ref, err := a.registry.ResolveActive(logicalName)
	if err != nil {
		return nil, err
	}

	req := CallRequest{
		Contract: ref,
		Function: function,
		Args:     args,
		Sender:   a.senderFor(ref, senderOverride),
		Mode:     ModeReadOnly,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	res, err := a.node.CallReadOnly(ctx, ref.Principal, function, req.Sender, args)
	if err != nil {
		a.logger.Warn("Read-only call failed",
			zap.String("contract", ref.ID()),
			zap.String("function", function),
			zap.Error(err))
		return nil, err
	}
	if !res.Okay {
		return nil, errors.NewContractError(ref.ID(), function, res.Cause)
	}

	value, err := clarity.DecodeHex(res.Result)
	if err != nil {
		return nil, errors.NewDecodeError("clarity value", "", err)
	}
	return value, nil
}

// CallReadOnly evaluates a read-only function and returns the value as plain
// Go data (see clarity.ToNative).
func (a *Adapter) CallReadOnly(ctx context.Context, logicalName, function string, args []clarity.Value, senderOverride string) (any, error) {
	value, err := a.CallReadOnlyValue(ctx, logicalName, function, args, senderOverride)
	if err != nil {
		return nil, err
	}
	return clarity.ToNative(value), nil
}

// Prepare resolves and validates a state-changing call without dispatching it.
// Transfers not covered by postConditions are allowed; the listed conditions
// are still enforced by the chain.
func (a *Adapter) Prepare(logicalName, function string, args []clarity.Value, postConditions []PostCondition) (CallRequest, error) {
	ref, err := a.registry.ResolveActive(logicalName)
	if err != nil {
		return CallRequest{}, err
	}

	sender, _ := a.SessionAddress()
	req := CallRequest{
		Contract:          ref,
		Function:          function,
		Args:              args,
		Sender:            sender,
		PostConditions:    postConditions,
		PostConditionMode: PostConditionModeAllow,
		Mode:              ModeStateChanging,
	}
	if IsPaymentBearing(logicalName, function) {
		req.PostConditionMode = PostConditionModeDeny
	}
	if err := req.Validate(); err != nil {
		return CallRequest{}, err
	}
	return req, nil
}

// SubmitCall builds a state-changing call and routes it through the wallet.
// It blocks until the user decides.
func (a *Adapter) SubmitCall(ctx context.Context, logicalName, function string, args []clarity.Value, postConditions []PostCondition) (*Result, error) {
	req, err := a.Prepare(logicalName, function, args, postConditions)
	if err != nil {
		return nil, err
	}
	return a.Execute(ctx, req)
}

// Submit is the callback form of Execute.
func (a *Adapter) Submit(ctx context.Context, req CallRequest, cb Callbacks) error {
	res, err := a.Execute(ctx, req)
	if err != nil {
		return err
	}

	switch res.Status {
	case StatusBroadcast:
		if cb.OnResult != nil {
			cb.OnResult(*res.Receipt)
		}
	case StatusCancelled:
		if cb.OnCancel != nil {
			cb.OnCancel()
		}
	}
	return nil
}

// Execute dispatches a prepared state-changing call.
func (a *Adapter) Execute(ctx context.Context, req CallRequest) (*Result, error) {
	req.Mode = ModeStateChanging
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if a.wallet == nil {
		return nil, errors.NewUnauthorizedError("no wallet configured for signing")
	}

	encoded, err := req.EncodedArgs()
	if err != nil {
		return nil, err
	}

	profile := a.registry.Active()
	txReq := TxRequest{
		Network:           profile.Name,
		NetworkID:         profile.NetworkID,
		NodeURL:           profile.APIURL,
		ContractAddress:   req.Contract.Address,
		ContractName:      req.Contract.OnChainName,
		FunctionName:      req.Function,
		FunctionArgs:      encoded,
		PostConditions:    req.PostConditions,
		PostConditionMode: req.PostConditionMode,
		Sender:            req.Sender,
	}

	a.logger.Info("Requesting wallet approval",
		zap.String("contract", req.Contract.ID()),
		zap.String("function", req.Function),
		zap.Int("post_conditions", len(req.PostConditions)))

	resp, err := a.wallet.RequestTransaction(ctx, txReq)
	if err != nil {
		if errors.IsCancelled(err) {
			a.logger.Info("Transaction cancelled in wallet",
				zap.String("contract", req.Contract.ID()),
				zap.String("function", req.Function))
			return &Result{Status: StatusCancelled}, nil
		}
		return nil, err
	}

	txID := resp.TxID
	if txID == "" {
		if len(resp.TxRaw) == 0 {
			return nil, errors.NewDecodeError("wallet response", "wallet returned neither a txid nor a signed transaction", nil)
		}
		txID, err = a.node.BroadcastTransaction(ctx, resp.TxRaw)
		if err != nil {
			return nil, err
		}
	}

	receipt := &Receipt{
		TxID:        txID,
		Contract:    req.Contract.ID(),
		Function:    req.Function,
		Network:     profile.Name,
		ExplorerURL: stacks.ExplorerTxURL(profile.ExplorerURL, txID, profile.SessionKey()),
		SubmittedAt: a.now().UTC(),
	}

	a.logger.Info("Transaction broadcast",
		zap.String("txid", txID),
		zap.String("contract", receipt.Contract),
		zap.String("function", receipt.Function))

	return &Result{Status: StatusBroadcast, Receipt: receipt}, nil
}
