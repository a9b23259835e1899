package integration_test

const (
	dbName         = "seat_reservation"
	dbUser         = "test_user"
	dbPassword     = "test_password"
	dbImageName    = "postgres:17-alpine"
	cacheImageName = "redis:7"

	testPriceCents = 1250
)
