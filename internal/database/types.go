package database

// LocalUserID identifies the single profile kept by the offline repositories.
const LocalUserID = "local"
