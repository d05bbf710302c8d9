/*
Package custodytest provides mocks and helpers that simplify writing tests
of handlers, decorators and the node.

Each helper either implements one of the custody interfaces with a
configurable behaviour (Handler, Decorator, Auth, Tx, Msg) or creates unique
test data (NewAddress, SequenceID).
*/
package custodytest
