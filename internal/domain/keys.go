package domain

// KeyPrefix is the default namespace for every key lexdex writes to the store.
const KeyPrefix = "lexdex:"
