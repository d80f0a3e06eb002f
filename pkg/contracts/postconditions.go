package contracts

import (
	"fmt"

	"github.com/montybasquiart/sihiri-build/pkg/clarity"
)

// ConditionCode compares an asset movement against the declared amount.
type ConditionCode uint8

const (
	ConditionEqual        ConditionCode = 0x01
	ConditionGreater      ConditionCode = 0x02
	ConditionGreaterEqual ConditionCode = 0x03
	ConditionLess         ConditionCode = 0x04
	ConditionLessEqual    ConditionCode = 0x05

	// Non-fungible conditions
	ConditionSends       ConditionCode = 0x10
	ConditionDoesNotSend ConditionCode = 0x11
)

func (c ConditionCode) String() string {
	switch c {
	case ConditionEqual:
		return "eq"
	case ConditionGreater:
		return "gt"
	case ConditionGreaterEqual:
		return "gte"
	case ConditionLess:
		return "lt"
	case ConditionLessEqual:
		return "lte"
	case ConditionSends:
		return "sends"
	case ConditionDoesNotSend:
		return "does-not-send"
	default:
		return fmt.Sprintf("code(%d)", uint8(c))
	}
}

// Bounded reports whether the code caps the outflow from above.
func (c ConditionCode) Bounded() bool {
	return c == ConditionEqual || c == ConditionLess || c == ConditionLessEqual
}

func (c ConditionCode) fungible() bool {
	return c >= ConditionEqual && c <= ConditionLessEqual
}

// PostConditionMode decides what happens to transfers no post-condition covers.
type PostConditionMode uint8

const (
	PostConditionModeAllow PostConditionMode = 0x01
	PostConditionModeDeny  PostConditionMode = 0x02
)

func (m PostConditionMode) String() string {
	if m == PostConditionModeAllow {
		return "allow"
	}
	return "deny"
}

// PostConditionKind is the asset class a post-condition constrains.
type PostConditionKind string

const (
	KindSTX PostConditionKind = "stx"
	KindNFT PostConditionKind = "nft"
)

// PostCondition is a spending constraint the chain enforces on a transaction.
type PostCondition struct {
	Kind      PostConditionKind `json:"kind"`
	Principal string            `json:"principal"`
	Code      ConditionCode     `json:"code"`
	Amount    uint64            `json:"amount,omitempty"`   // microSTX
	Asset     string            `json:"asset,omitempty"`    // ADDRESS.contract::asset-name
	AssetID   string            `json:"asset_id,omitempty"` // hex-encoded Clarity value
}

// STXPostCondition constrains the microSTX that principal may send.
func STXPostCondition(principal string, code ConditionCode, amount uint64) PostCondition {
	return PostCondition{
		Kind:      KindSTX,
		Principal: principal,
		Code:      code,
		Amount:    amount,
	}
}

// NFTPostCondition constrains whether principal sends the token tokenID of asset.
func NFTPostCondition(principal, asset string, tokenID clarity.Value, code ConditionCode) (PostCondition, error) {
	id, err := clarity.EncodeHex(tokenID)
	if err != nil {
		return PostCondition{}, fmt.Errorf("invalid token id: %w", err)
	}
	return PostCondition{
		Kind:      KindNFT,
		Principal: principal,
		Code:      code,
		Asset:     asset,
		AssetID:   id,
	}, nil
}

// Validate checks the post-condition is well formed.
func (pc PostCondition) Validate() error {
	if _, err := clarity.ParsePrincipal(pc.Principal); err != nil {
		return fmt.Errorf("principal: %w", err)
	}

	switch pc.Kind {
	case KindSTX:
		if !pc.Code.fungible() {
			return fmt.Errorf("code %s is not valid for STX", pc.Code)
		}
	case KindNFT:
		if pc.Code != ConditionSends && pc.Code != ConditionDoesNotSend {
			return fmt.Errorf("code %s is not valid for NFTs", pc.Code)
		}
		if pc.Asset == "" || pc.AssetID == "" {
			return fmt.Errorf("asset and asset id are required")
		}
	default:
		return fmt.Errorf("unknown kind %q", pc.Kind)
	}
	return nil
}

func (pc PostCondition) String() string {
	if pc.Kind == KindNFT {
		return fmt.Sprintf("%s %s %s[%s]", pc.Principal, pc.Code, pc.Asset, pc.AssetID)
	}
	return fmt.Sprintf("%s %s %d uSTX", pc.Principal, pc.Code, pc.Amount)
}
