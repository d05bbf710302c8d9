/*
Package custody defines all common interfaces to weave together the various
subpackages of a multi owner treasury, as well as implementations of some of
the simpler components (when interfaces would be too much overhead).

We pass context through context.Context between app, middleware, and
handlers. To do so, custody defines some common keys to store info, such as
the block time and the logger. Each extension may add its own keys to enrich
the context with specific data.

There should exist two functions for every XYZ of type T that we want to
support in Context:

  WithXYZ(Context, T) Context
  XYZ(Context) (val T, ok bool)

WithXYZ panics if the value was previously set to avoid lower-level modules
overwriting the value (eg. block time).
*/
package custody
