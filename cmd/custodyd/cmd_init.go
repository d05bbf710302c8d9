package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/google/uuid"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/app"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x/treasury"
	"github.com/spf13/cobra"
)

var flagChainID string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the configuration and genesis files in the home directory",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func init() {
	initCmd.Flags().StringVar(&flagChainID, "chain-id", "", "chain ID of the genesis, random if empty")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	if err := os.MkdirAll(flagHome, 0700); err != nil {
		return errors.Wrapf(errors.ErrInput, "create home: %s", err)
	}
	created, err := writeConfig(flagHome, DefaultConfig())
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintln(cmd.OutOrStdout(), "Generated config file")
	}

	conf, err := loadConfig()
	if err != nil {
		return err
	}
	if _, err := os.Stat(conf.Genesis); err == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Found genesis file", conf.Genesis)
		return nil
	}

	chainID := flagChainID
	if chainID == "" {
		chainID = "custody-" + uuid.New().String()[:8]
	}
	gen, err := defaultGenesis(chainID)
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(gen, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := ioutil.WriteFile(conf.Genesis, raw, 0600); err != nil {
		return errors.Wrapf(errors.ErrInput, "write genesis: %s", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Generated genesis file", conf.Genesis)
	return nil
}

// defaultGenesis returns a genesis with the default treasury configuration
// and no treasuries.
func defaultGenesis(chainID string) (app.Genesis, error) {
	conf, err := json.Marshal(map[string]interface{}{
		"treasury": treasury.DefaultConfiguration(),
	})
	if err != nil {
		return app.Genesis{}, errors.Wrap(errors.ErrInput, err.Error())
	}
	return app.Genesis{
		ChainID: chainID,
		AppState: custody.Options{
			"conf":       conf,
			"cash":       json.RawMessage(`[]`),
			"treasuries": json.RawMessage(`[]`),
		},
	}, nil
}
