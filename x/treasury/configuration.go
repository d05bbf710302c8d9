package treasury

import (
	"time"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/gconf"
)

const confPkg = "treasury"

// Configuration is the on-store configuration of the treasury extension.
type Configuration struct {
	// DefaultTTL is the lifetime of a proposal created without one.
	DefaultTTL custody.UnixDuration `json:"default_ttl"`
	// MaxTTL is the longest lifetime a proposal may request.
	MaxTTL custody.UnixDuration `json:"max_ttl"`
	// MaxOwners limits the size of the owner set.
	MaxOwners uint32 `json:"max_owners"`
	// RejectUnfundedTransfers makes proposing a transfer fail when the
	// treasury does not hold the amount at the time of proposal.
	RejectUnfundedTransfers bool `json:"reject_unfunded_transfers"`
}

var _ gconf.Configuration = (*Configuration)(nil)

// DefaultConfiguration is used when no configuration was saved.
func DefaultConfiguration() Configuration {
	return Configuration{
		DefaultTTL: custody.AsUnixDuration(7 * 24 * time.Hour),
		MaxTTL:     custody.AsUnixDuration(90 * 24 * time.Hour),
		MaxOwners:  64,
	}
}

// Marshal serializes the configuration.
func (c *Configuration) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(c)
}

// Unmarshal loads the configuration from its serialized form.
func (c *Configuration) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, c)
}

// Validate requires positive lifetimes and a non zero owner limit.
func (c *Configuration) Validate() error {
	var errs error
	if c.DefaultTTL <= 0 {
		errs = errors.AppendField(errs, "DefaultTTL", errors.Wrap(errors.ErrInput, "must be positive"))
	}
	if c.MaxTTL < c.DefaultTTL {
		errs = errors.AppendField(errs, "MaxTTL", errors.Wrap(errors.ErrInput, "must not be shorter than the default"))
	}
	if c.MaxOwners == 0 {
		errs = errors.AppendField(errs, "MaxOwners", errors.ErrEmpty)
	}
	return errs
}

// ttl returns the lifetime of a proposal that requested the given one.
func (c Configuration) ttl(requested custody.UnixDuration) (custody.UnixDuration, error) {
	switch {
	case requested < 0:
		return 0, errors.Wrap(errors.ErrInput, "negative ttl")
	case requested == 0:
		return c.DefaultTTL, nil
	case requested > c.MaxTTL:
		return 0, errors.Wrapf(errors.ErrInput, "ttl longer than %s", c.MaxTTL)
	default:
		return requested, nil
	}
}

// SaveConfiguration stores the configuration of the extension.
func SaveConfiguration(db gconf.Store, c Configuration) error {
	return gconf.Save(db, confPkg, &c)
}

// loadConf returns the stored configuration or the default one if none was
// saved.
func loadConf(db gconf.ReadStore) (Configuration, error) {
	var c Configuration
	switch err := gconf.Load(db, confPkg, &c); {
	case err == nil:
		return c, nil
	case errors.ErrNotFound.Is(err):
		return DefaultConfiguration(), nil
	default:
		return c, errors.Wrap(err, "load configuration")
	}
}
