package domain

import "context"

// LocalStore persists the profile and the conversation threads on the
// client side. Loads never fail: unreadable data yields the empty default.
type LocalStore interface {
	LoadProfile(ctx context.Context) Profile
	SaveProfile(ctx context.Context, p Profile) error
	LoadThreads(ctx context.Context) Threads
	SaveThreads(ctx context.Context, threads Threads) error
}
