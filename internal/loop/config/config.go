// Package config centralizes all tunable game parameters.
// Distances are in normalized screen units (the playfield is 1x1),
// rates are per second.
package config

import "time"

// Playfield
const (
	FieldWidth  = 1.0
	FieldHeight = 1.0
)

// Player
const (
	PlayerWidth       = 0.07
	PlayerHeight      = 0.11
	InitialBoosts     = 10
	BoostCooldown     = 500 * time.Millisecond
	BoostImpulse      = 1.6  // Velocity added by one boost
	Gravity           = 0.75 // Downward acceleration
	MaxSpeed          = 0.9
	Damping           = 0.01 // Fraction of velocity lost per 60Hz frame
	BorderRestitution = 2.0  // Bounce strength relative to current speed
	ViewRadiusSmall   = 0.22
	ViewRadiusLarge   = 0.4
	SoundVolume       = 0.8
)

// Collectibles
const (
	MaxCollectibles    = 15
	SpawnBatch         = 7
	SpawnCooldown      = time.Second
	SpawnAttempts      = 32 // Rejection-sampling draws per collectible
	CollectibleMinSize = 0.03
	CollectibleMaxSize = 0.07
	HurtfulBoostCost   = 1
	HelpfulBoostGain   = 2
)

// Collectible acceleration shrinks from AccelInitial toward AccelFloor as
// the run goes on, with time constant AccelDecay.
const (
	AccelInitial = 0.6
	AccelFloor   = 0.05
	AccelMin     = 0.01
	AccelLateral = 0.25 // Horizontal range as a fraction of the vertical bound
	AccelDecay   = 60 * time.Second
)

// Game flow
const (
	DeathDelay      = 2 * time.Second
	WarningDuration = 3 * time.Second
	ReportInterval  = 250 * time.Millisecond
	SyncInterval    = 200 * time.Millisecond
	MaxNameLength   = 16
)

// Shutdown
const (
	ShutdownDisplaySeconds = 10.0 // Seconds to show shutdown message before auto-disconnect
)

// Inactivity
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
)

// Client rendering
const (
	ClientTargetFPS       = 60
	ClientTargetFrameTime = time.Second / ClientTargetFPS
	MaxTermWidth          = 160
	MaxTermHeight         = 50
	LeaderboardRows       = 8
	HUDLeaderboardRows    = 3
)
