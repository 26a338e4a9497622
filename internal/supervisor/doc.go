// Basketd - Market Basket Recommendation Service
// Copyright 2026 Basketd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketd/basketd

// Package supervisor builds the suture supervision tree that runs basketd's
// long-lived components. Service wrappers that adapt components to
// suture.Service live in the services subpackage.
package supervisor
