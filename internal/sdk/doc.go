// Package sdk ties the module registry, the service registry and the
// backends together behind one context object.
//
// An SDK is created with New, populated by Init and torn down by Shutdown.
// There is no package-level state; independent SDK values never share
// registrations. The facade methods return errcode.Code values for callers
// that work with result codes rather than Go errors.
package sdk
