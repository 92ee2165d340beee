package tracker

import (
	"testing"
	"time"

	"fintrack/internal/database"
	"fintrack/internal/ledger"
	"fintrack/internal/models"
	"fintrack/internal/repositories"
	"fintrack/internal/session"
	"fintrack/internal/services/service_mocks"
	"fintrack/internal/store"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

func TestListModel(t *testing.T) {
	suite.Run(t, new(ListModelSuite))
}

type ListModelSuite struct {
	suite.Suite
	db    *database.DB
	store *store.Store
	model *ListModel
	alice *models.User
	bob   *models.User
}

func (s *ListModelSuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	repo := repositories.NewTransactionRepository(s.db.DB)
	s.store = store.New(repo, nil, nil)
	s.model = NewListModel(s.store, nil)
	s.alice = database.CreateTestUser(s.T(), s.db, "alice@example.com")
	s.bob = database.CreateTestUser(s.T(), s.db, "bob@example.com")
}

func (s *ListModelSuite) TearDownTest() {
	s.model.Close()
	s.store.Close()
	database.CleanupTestDB(s.T(), s.db)
}

func (s *ListModelSuite) createTransaction(ownerID uuid.UUID, description, amount, kind string, date time.Time) uuid.UUID {
	id, err := s.store.Create(&models.Transaction{
		OwnerID:     ownerID,
		Description: description,
		Amount:      decimal.RequireFromString(amount),
		Category:    "general",
		Kind:        kind,
		Date:        date,
	})
	s.Require().NoError(err)
	return id
}

// waitForSnapshot polls until the predicate holds; the pump applies pushed
// snapshots asynchronously
func (s *ListModelSuite) waitForSnapshot(predicate func([]models.Transaction) bool) {
	s.T().Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if predicate(s.model.Snapshot()) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	s.Require().FailNow("snapshot never reached expected state")
}

func (s *ListModelSuite) TestSetOwner_SnapshotPopulatedOnReturn() {
	s.createTransaction(s.alice.ID, "Salary", "2500.00", models.KindIncome,
		time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))

	s.Require().NoError(s.model.SetOwner(s.alice.ID))

	// No waiting: the initial snapshot is applied before SetOwner returns
	snapshot := s.model.Snapshot()
	s.Require().Len(snapshot, 1)
	s.Equal("Salary", snapshot[0].Description)

	owner, signedIn := s.model.Owner()
	s.True(signedIn)
	s.Equal(s.alice.ID, owner)
}

func (s *ListModelSuite) TestMutations_ReachTheModel() {
	s.Require().NoError(s.model.SetOwner(s.alice.ID))
	s.Empty(s.model.Snapshot())

	s.createTransaction(s.alice.ID, "Coffee", "4.50", models.KindExpense,
		time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC))

	s.waitForSnapshot(func(snapshot []models.Transaction) bool {
		return len(snapshot) == 1
	})
}

func (s *ListModelSuite) TestSwitchOwner_NoStaleSnapshotSurvives() {
	s.createTransaction(s.alice.ID, "Alice's salary", "2500.00", models.KindIncome,
		time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	s.createTransaction(s.bob.ID, "Bob's rent", "900.00", models.KindExpense,
		time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))

	s.Require().NoError(s.model.SetOwner(s.alice.ID))
	s.Require().Len(s.model.Snapshot(), 1)

	s.Require().NoError(s.model.SetOwner(s.bob.ID))

	snapshot := s.model.Snapshot()
	s.Require().Len(snapshot, 1)
	s.Equal("Bob's rent", snapshot[0].Description)

	// A mutation under alice must never reach the model now
	s.createTransaction(s.alice.ID, "Late arrival", "1.00", models.KindExpense,
		time.Date(2026, 4, 3, 0, 0, 0, 0, time.UTC))
	time.Sleep(20 * time.Millisecond)

	for _, t := range s.model.Snapshot() {
		s.Equal(s.bob.ID, t.OwnerID)
	}
}

func (s *ListModelSuite) TestClear_EmptiesSnapshot() {
	s.createTransaction(s.alice.ID, "Salary", "2500.00", models.KindIncome,
		time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	s.Require().NoError(s.model.SetOwner(s.alice.ID))

	s.model.Clear()

	s.Empty(s.model.Snapshot())
	_, signedIn := s.model.Owner()
	s.False(signedIn)
}

func (s *ListModelSuite) TestView_DerivesFilteredTotals() {
	s.createTransaction(s.alice.ID, "Salary", "2500.00", models.KindIncome,
		time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	s.createTransaction(s.alice.ID, "Rent", "900.00", models.KindExpense,
		time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC))
	s.createTransaction(s.alice.ID, "Old bill", "50.00", models.KindExpense,
		time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))

	s.Require().NoError(s.model.SetOwner(s.alice.ID))

	view := s.model.View(ledger.Filter{}.WithMonth(4).WithYear(2026))
	s.Len(view.Filtered, 2)
	s.True(view.TotalIncome.Equal(decimal.RequireFromString("2500.00")))
	s.True(view.TotalExpense.Equal(decimal.RequireFromString("900.00")))
	s.True(view.Balance.Equal(decimal.RequireFromString("1600.00")))
}

func (s *ListModelSuite) TestFollowSession_TracksIdentityChanges() {
	ctrl := gomock.NewController(s.T())
	defer ctrl.Finish()
	auth := service_mocks.NewMockAuthServiceInterface(ctrl)
	auth.EXPECT().Authenticate("alice@example.com", gomock.Any()).
		Return(&models.User{ID: s.alice.ID, Email: s.alice.Email, DisplayName: s.alice.DisplayName}, nil)
	auth.EXPECT().Authenticate("bob@example.com", gomock.Any()).
		Return(&models.User{ID: s.bob.ID, Email: s.bob.Email, DisplayName: s.bob.DisplayName}, nil)

	s.createTransaction(s.alice.ID, "Alice's salary", "2500.00", models.KindIncome,
		time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	s.createTransaction(s.bob.ID, "Bob's rent", "900.00", models.KindExpense,
		time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))

	provider := session.NewProvider(auth, nil)
	watcher := provider.Watch()
	done := s.model.FollowSession(watcher)

	_, err := provider.SignIn("alice@example.com", "password123")
	s.Require().NoError(err)
	s.waitForSnapshot(func(snapshot []models.Transaction) bool {
		return len(snapshot) == 1 && snapshot[0].OwnerID == s.alice.ID
	})

	// Switching users rebinds the model to bob with no overlap
	_, err = provider.SwitchUser("bob@example.com", "password456")
	s.Require().NoError(err)
	s.waitForSnapshot(func(snapshot []models.Transaction) bool {
		return len(snapshot) == 1 && snapshot[0].OwnerID == s.bob.ID
	})

	// Sign-out empties the list
	provider.SignOut()
	s.waitForSnapshot(func(snapshot []models.Transaction) bool {
		return len(snapshot) == 0
	})

	watcher.Cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		s.FailNow("follow loop did not stop after watcher cancel")
	}
}
