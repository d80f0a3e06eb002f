package contracts

import (
	"context"
	"fmt"
	"math/big"

	"github.com/montybasquiart/sihiri-build/pkg/clarity"
	"github.com/montybasquiart/sihiri-build/pkg/errors"
)

// Record is a tuple returned by a contract, decoded to plain Go data.
type Record map[string]any

// read evaluates a read-only function and turns an (err v) answer into a
// ContractError.
func (a *Adapter) read(ctx context.Context, logicalName, function string, args ...clarity.Value) (any, error) {
	out, err := a.CallReadOnly(ctx, logicalName, function, args, "")
	if err != nil {
		return nil, err
	}
	if rerr, ok := out.(clarity.ResponseError); ok {
		ref, _ := a.registry.ResolveActive(logicalName)
		return nil, errors.NewContractError(ref.ID(), function, fmt.Sprint(rerr.Value))
	}
	return out, nil
}

// requireSender returns the signed-in address, which payment-bearing calls
// need to build their post-conditions.
func (a *Adapter) requireSender() (string, error) {
	addr, ok := a.SessionAddress()
	if !ok || addr == "" {
		return "", errors.NewUnauthorizedError("sign in before sending STX")
	}
	return addr, nil
}

// contractArg resolves a logical contract to a contract principal argument.
func (a *Adapter) contractArg(logicalName string) (clarity.Value, error) {
	ref, err := a.registry.ResolveActive(logicalName)
	if err != nil {
		return nil, err
	}
	return ref.Principal, nil
}

func principalArg(field, s string) (clarity.Value, error) {
	p, err := clarity.ParsePrincipal(s)
	if err != nil {
		return nil, errors.NewValidationError(field, err.Error())
	}
	return p, nil
}

func asString(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", errors.NewDecodeError("clarity value", fmt.Sprintf("expected string, got %T", v), nil)
	}
	return s, nil
}

func asBig(v any) (*big.Int, error) {
	if v == nil {
		return nil, nil
	}
	n, ok := v.(*big.Int)
	if !ok {
		return nil, errors.NewDecodeError("clarity value", fmt.Sprintf("expected integer, got %T", v), nil)
	}
	return n, nil
}

func asUint64(v any) (uint64, error) {
	n, err := asBig(v)
	if err != nil || n == nil {
		return 0, err
	}
	if !n.IsUint64() {
		return 0, errors.NewDecodeError("clarity value", fmt.Sprintf("%s does not fit in 64 bits", n), nil)
	}
	return n.Uint64(), nil
}

func asBool(v any) (bool, error) {
	if v == nil {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, errors.NewDecodeError("clarity value", fmt.Sprintf("expected bool, got %T", v), nil)
	}
	return b, nil
}

func asRecord(v any) (Record, error) {
	if v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, errors.NewDecodeError("clarity value", fmt.Sprintf("expected tuple, got %T", v), nil)
	}
	return Record(m), nil
}

func asUint64List(v any) ([]uint64, error) {
	if v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, errors.NewDecodeError("clarity value", fmt.Sprintf("expected list, got %T", v), nil)
	}
	out := make([]uint64, 0, len(items))
	for _, item := range items {
		n, err := asUint64(item)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
