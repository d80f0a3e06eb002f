package contracts

import (
	"fmt"

	"github.com/montybasquiart/sihiri-build/pkg/clarity"
	"github.com/montybasquiart/sihiri-build/pkg/config"
	"github.com/montybasquiart/sihiri-build/pkg/errors"
	"github.com/montybasquiart/sihiri-build/pkg/registry"
)

// Mode distinguishes reads from transactions.
type Mode int

const (
	ModeReadOnly Mode = iota
	ModeStateChanging
)

func (m Mode) String() string {
	if m == ModeReadOnly {
		return "read-only"
	}
	return "state-changing"
}

// paymentBearing lists the functions that move the caller's STX.
var paymentBearing = map[string]map[string]bool{
	config.ContractMarketplace: {
		"buy-listing": true,
		"place-bid":   true,
	},
	config.ContractRoyalty: {
		"direct-payment": true,
	},
}

// IsPaymentBearing reports whether function on the logical contract moves
// the caller's STX balance.
func IsPaymentBearing(logicalName, function string) bool {
	return paymentBearing[logicalName][function]
}

// CallRequest is a fully resolved contract call.
type CallRequest struct {
	Contract          registry.ContractReference
	Function          string
	Args              []clarity.Value
	Sender            string
	PostConditions    []PostCondition
	PostConditionMode PostConditionMode
	Mode              Mode
}

// Validate reports every problem with the request at once.
func (r CallRequest) Validate() error {
	var violations []errors.Violation

	if r.Contract.OnChainName == "" || r.Contract.Address == "" {
		violations = append(violations, errors.Violation{Field: "contract", Message: "is required"})
	}
	if r.Function == "" {
		violations = append(violations, errors.Violation{Field: "function", Message: "is required"})
	}
	for i, arg := range r.Args {
		if arg == nil {
			violations = append(violations, errors.Violation{Field: fmt.Sprintf("args[%d]", i), Message: "is nil"})
		}
	}
	if r.Sender != "" {
		if _, err := clarity.ParsePrincipal(r.Sender); err != nil {
			violations = append(violations, errors.Violation{Field: "sender", Message: err.Error()})
		}
	}
	for i, pc := range r.PostConditions {
		if err := pc.Validate(); err != nil {
			violations = append(violations, errors.Violation{Field: fmt.Sprintf("postConditions[%d]", i), Message: err.Error()})
		}
	}

	switch r.Mode {
	case ModeReadOnly:
		if len(r.PostConditions) > 0 {
			violations = append(violations, errors.Violation{
				Field:   "postConditions",
				Message: "read-only calls cannot carry post-conditions",
			})
		}
	case ModeStateChanging:
		if IsPaymentBearing(r.Contract.LogicalName, r.Function) && !r.hasSTXCap() {
			violations = append(violations, errors.Violation{
				Field:   "postConditions",
				Message: fmt.Sprintf("%s moves STX and requires a bounded STX post-condition on the sender", r.Function),
			})
		}
	}

	if len(violations) == 0 {
		return nil
	}
	return errors.NewValidationErrors(violations)
}

// hasSTXCap reports whether some post-condition caps the sender's STX outflow.
func (r CallRequest) hasSTXCap() bool {
	for _, pc := range r.PostConditions {
		if pc.Kind != KindSTX || !pc.Code.Bounded() {
			continue
		}
		if r.Sender == "" || pc.Principal == r.Sender {
			return true
		}
	}
	return false
}

// EncodedArgs returns the arguments as 0x-prefixed hex.
func (r CallRequest) EncodedArgs() ([]string, error) {
	out := make([]string, 0, len(r.Args))
	for i, arg := range r.Args {
		h, err := clarity.EncodeHex(arg)
		if err != nil {
			return nil, errors.NewValidationError(fmt.Sprintf("args[%d]", i), err.Error())
		}
		out = append(out, h)
	}
	return out, nil
}
