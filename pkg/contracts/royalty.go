package contracts

import (
	"context"
	"math/big"

	"github.com/montybasquiart/sihiri-build/pkg/clarity"
	"github.com/montybasquiart/sihiri-build/pkg/config"
	"github.com/montybasquiart/sihiri-build/pkg/errors"
)

// Royalty wraps the royalty and direct payment contract.
type Royalty struct {
	a *Adapter
}

// Royalty returns the royalty contract wrapper.
func (a *Adapter) Royalty() *Royalty {
	return &Royalty{a: a}
}

func (r *Royalty) GetLastPaymentID(ctx context.Context) (uint64, error) {
	v, err := r.a.read(ctx, config.ContractRoyalty, "get-last-payment-id")
	if err != nil {
		return 0, err
	}
	return asUint64(v)
}

func (r *Royalty) GetPaymentDetails(ctx context.Context, paymentID uint64) (Record, error) {
	v, err := r.a.read(ctx, config.ContractRoyalty, "get-payment-details", clarity.NewUInt(paymentID))
	if err != nil {
		return nil, err
	}
	return asRecord(v)
}

// GetCreatorEarnings returns the creator's lifetime earnings in microSTX.
func (r *Royalty) GetCreatorEarnings(ctx context.Context, creator string) (*big.Int, error) {
	arg, err := principalArg("creator", creator)
	if err != nil {
		return nil, err
	}
	v, err := r.a.read(ctx, config.ContractRoyalty, "get-creator-earnings", arg)
	if err != nil {
		return nil, err
	}
	return earnings(v)
}

// GetCreatorTokenEarnings returns the creator's earnings from one token.
func (r *Royalty) GetCreatorTokenEarnings(ctx context.Context, creator string, tokenID uint64) (*big.Int, error) {
	arg, err := principalArg("creator", creator)
	if err != nil {
		return nil, err
	}
	v, err := r.a.read(ctx, config.ContractRoyalty, "get-creator-token-earnings", arg, clarity.NewUInt(tokenID))
	if err != nil {
		return nil, err
	}
	return earnings(v)
}

// earnings accepts either a bare amount or a tuple carrying total-earnings.
func earnings(v any) (*big.Int, error) {
	if rec, ok := v.(map[string]any); ok {
		v = rec["total-earnings"]
	}
	n, err := asBig(v)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return new(big.Int), nil
	}
	return n, nil
}

// DirectPayment pays recipient amount microSTX, capping the sender's
// outflow at amount.
func (r *Royalty) DirectPayment(ctx context.Context, recipient string, amount uint64, paymentType, note string) (*Result, error) {
	to, err := principalArg("recipient", recipient)
	if err != nil {
		return nil, err
	}
	if amount == 0 {
		return nil, errors.NewValidationError("amount", "must be greater than zero")
	}
	sender, err := r.a.requireSender()
	if err != nil {
		return nil, err
	}

	args := []clarity.Value{to, clarity.NewUInt(amount), clarity.StringUTF8(paymentType), clarity.StringUTF8(note)}
	pcs := []PostCondition{STXPostCondition(sender, ConditionLessEqual, amount)}
	return r.a.SubmitCall(ctx, config.ContractRoyalty, "direct-payment", args, pcs)
}
