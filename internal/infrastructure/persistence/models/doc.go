// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Key Principles:
// 1. Domain entities carry no GORM tags
// 2. Persistence models contain the GORM annotations and table mappings
// 3. ToDomain / FromDomain convert between the two
// 4. Repositories only read and write persistence models
//
// Structure:
// - follow.go: FollowModel for the follows table
// - review.go: ReviewModel for the reviews table
//
// The SQL migrations under migrations/ are the source of truth for the schema.
// AutoMigrate on these models is only used against SQLite in tests.
package models
