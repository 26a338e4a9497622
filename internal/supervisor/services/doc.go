// Basketd - Market Basket Recommendation Service
// Copyright 2026 Basketd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketd/basketd

// Package services adapts basketd's long-lived components (HTTP server,
// model watcher) to the suture.Service interface so the supervisor tree
// can manage their lifecycles.
package services
