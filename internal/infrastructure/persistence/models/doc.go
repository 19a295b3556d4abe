// Package models contains the GORM models for the commerce schema tables this
// service creates on first run. The schema itself is owned by the commerce
// platform; only the core tables needed by seeding are modelled here.
package models
