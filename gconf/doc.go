/*
Package gconf implements a configuration store intended to be used as a global,
in-database configuration.

Each extension owns a single configuration entity saved under the
"_c:<package name>" key. The configuration is loaded from the "conf" section
of the genesis file and every handler reads it from the store, so that all
state transitions are evaluated against the same, committed settings.
*/
package gconf
