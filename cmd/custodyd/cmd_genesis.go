package main

import (
	"context"
	"fmt"

	"github.com/iov-one/custody/app"
	custodyapp "github.com/iov-one/custody/cmd/custodyd/app"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x/treasury"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/tendermint/tendermint/libs/log"
)

var genesisCmd = &cobra.Command{
	Use:   "genesis",
	Short: "Genesis file tools",
}

var genesisValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Load the genesis into an in-memory state and list created treasuries",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runGenesisValidate,
}

func init() {
	genesisCmd.AddCommand(genesisValidateCmd)
	rootCmd.AddCommand(genesisCmd)
}

func runGenesisValidate(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	} else {
		conf, err := loadConfig()
		if err != nil {
			return err
		}
		path = conf.Genesis
	}
	gen, err := app.LoadGenesis(path)
	if err != nil {
		return err
	}

	store, err := custodyapp.CommitKVStore(custodyapp.BackendMemDB, "")
	if err != nil {
		return err
	}
	node, err := custodyapp.NewNode(store, log.NewNopLogger(), prometheus.NewRegistry())
	if err != nil {
		return err
	}
	if err := node.InitGenesis(context.Background(), gen); err != nil {
		return errors.Wrap(err, "invalid genesis")
	}

	res, err := node.Query(treasury.QueryTreasuries, nil)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Genesis of %s is valid.\n", gen.ChainID)
	for _, m := range res {
		var t treasury.Treasury
		if err := t.Unmarshal(m.Value); err != nil {
			return errors.Wrap(err, "treasury")
		}
		fmt.Fprintf(out, "treasury %x %q: %d of %d owners, address %s\n",
			t.ID, t.Name, t.Threshold, len(t.Owners), t.Address())
	}
	return nil
}
