// Package guard decides which dashboards are exposed to guest accounts.
//
// A cycle runs in four steps, all driven by the Coordinator:
//
//  1. Enumerator builds a normalized, deduplicated dashboard list from the
//     host's Lovelace stores and frontend panel registry.
//  2. ResolveGuests computes the guest set from the user directory or the
//     configured allow-list.
//  3. Detector evaluates each dashboard it has not seen before.
//  4. Handler turns violations into persistent notifications and, in revoke
//     mode, asks the Revoker to lock the dashboard down.
//
// The host is reached only through the UserDirectory, DashboardRegistry,
// NotificationSink and Revoker interfaces.
package guard
