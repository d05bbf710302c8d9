package treasury

import (
	amino "github.com/tendermint/go-amino"
)

var cdc = amino.NewCodec()

func init() {
	RegisterAmino(cdc)
}

// RegisterAmino registers all proposal actions with the given codec. Action
// is an interface, so every implementation must be known to the codec
// before a proposal can be serialized.
func RegisterAmino(cdc *amino.Codec) {
	cdc.RegisterInterface((*Action)(nil), nil)
	cdc.RegisterConcrete(&TransferAction{}, "treasury/TransferAction", nil)
	cdc.RegisterConcrete(&AddOwnerAction{}, "treasury/AddOwnerAction", nil)
	cdc.RegisterConcrete(&RemoveOwnerAction{}, "treasury/RemoveOwnerAction", nil)
	cdc.RegisterConcrete(&UpdateThresholdAction{}, "treasury/UpdateThresholdAction", nil)
}
