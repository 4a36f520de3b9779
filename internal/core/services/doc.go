// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The Reconciler owns the refresh cycle; QuestService, SettingsService
// and Scheduler are thin coordinators around it and the config store.
package services
