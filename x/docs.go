/*
Package x contains the standard extensions and the helpers they share.

Extensions implement common functionality (Handler, Decorator,
etc.) and are combined together by the app package into a node.

The Authenticator interface declared here decouples handlers from the way
caller identity is established. The node places the already authenticated
caller on the context with WithCaller and handlers read it back with
MainSigner(ctx, CallerAuth{}).
*/
package x
