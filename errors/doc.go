/*
Package errors implements custom error interfaces for custody.

Reuse as many errors from this package as possible and define custom package
errors only when a client must be able to tell the condition apart. Extensions
register their own root errors with Register(code, description), the same way
this package declares the common ones.

For reusing errors use ErrXyz.New or ErrXyz.Newf, or wrap any error with
Wrap/Wrapf to attach context. A stack trace is recorded once, at the innermost
wrap.

Once you have an error, you can use fmt to get more context
	%s is just the error message
	%+v is the full stack trace
	%v appends a compressed [filename:line] where the error was created
*/
package errors
