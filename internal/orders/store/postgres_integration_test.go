//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"daviz/internal/orders/store"
	"daviz/pkg/testutil/containers"
)

type PostgresOrderStoreSuite struct {
	orderStoreSuite
	postgres *containers.PostgresContainer
	pg       *store.PostgresStore
}

func TestPostgresOrderStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresOrderStoreSuite))
}

func (s *PostgresOrderStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.pg = store.NewPostgres(s.postgres.DB)
	s.Require().NoError(s.pg.Migrate(context.Background()))
}

func (s *PostgresOrderStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.Require().NoError(s.postgres.TruncateTables(s.ctx, "interest_orders"))
	s.store = s.pg
	// microsecond precision survives the timestamptz round trip
	s.now = time.Now().UTC().Truncate(time.Microsecond)
}
