package checkin

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fatflowers/gymgate/internal/app/service/audit"
	"github.com/fatflowers/gymgate/internal/app/service/broadcast"
	"github.com/fatflowers/gymgate/internal/app/service/visit"
	"github.com/fatflowers/gymgate/internal/models"
	"github.com/fatflowers/gymgate/pkg/types"
)

const (
	companyA = "company-a"
	companyB = "company-b"
	memberID = "0190b7a3-0f0e-7c1a-9a5e-3f6d2c1b0a99"
)

type fakeDirectory struct {
	member     *models.Member
	membership *models.Membership
	lookups    int
}

func (f *fakeDirectory) FindMember(_ context.Context, id, companyID string) (*models.Member, error) {
	f.lookups++
	if f.member == nil || f.member.ID != id || f.member.CompanyID != companyID {
		return nil, nil
	}
	return f.member, nil
}

func (f *fakeDirectory) FindMemberByBiometricToken(_ context.Context, token, companyID string) (*models.Member, error) {
	f.lookups++
	if f.member == nil || f.member.BiometricToken == nil || *f.member.BiometricToken != token || f.member.CompanyID != companyID {
		return nil, nil
	}
	return f.member, nil
}

func (f *fakeDirectory) FindCurrent(_ context.Context, memberID, companyID string) (*models.Membership, error) {
	if f.membership == nil || f.membership.MemberID != memberID || f.membership.CompanyID != companyID {
		return nil, nil
	}
	return f.membership, nil
}

type fakeStore struct {
	open      map[string]*models.Visit // by membership id
	byID      map[string]*models.Visit
	companies map[string]string // visit id -> company id
	created   []*models.Visit
	closed    []string
	seq       int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		open:      map[string]*models.Visit{},
		byID:      map[string]*models.Visit{},
		companies: map[string]string{},
	}
}

func (f *fakeStore) add(v *models.Visit, companyID string) {
	f.byID[v.ID] = v
	f.companies[v.ID] = companyID
	if v.CheckOut == nil {
		f.open[v.MembershipID] = v
	}
}

func (f *fakeStore) FindOpen(_ context.Context, membershipID string) (*models.Visit, error) {
	return f.open[membershipID], nil
}

func (f *fakeStore) Create(_ context.Context, membershipID, gymID, deviceID string, at time.Time) (*models.Visit, error) {
	if f.open[membershipID] != nil {
		return nil, visit.ErrDuplicateOpenVisit
	}
	f.seq++
	v := &models.Visit{
		ID:           string(rune('a'+f.seq)) + "-visit",
		MembershipID: membershipID,
		GymID:        gymID,
		DeviceID:     deviceID,
		CheckIn:      at,
	}
	f.open[membershipID] = v
	f.byID[v.ID] = v
	f.created = append(f.created, v)
	return v, nil
}

func (f *fakeStore) Close(_ context.Context, visitID string, at time.Time) (*models.Visit, error) {
	v := f.byID[visitID]
	if v == nil {
		return nil, nil
	}
	if v.CheckOut == nil {
		v.CheckOut = &at
		delete(f.open, v.MembershipID)
		f.closed = append(f.closed, visitID)
	}
	return v, nil
}

func (f *fakeStore) FindForCompany(_ context.Context, visitID, companyID string) (*models.Visit, error) {
	if f.companies[visitID] != companyID {
		return nil, nil
	}
	return f.byID[visitID], nil
}

type fakeSink struct{ entries []audit.Entry }

func (f *fakeSink) Record(_ context.Context, e audit.Entry) { f.entries = append(f.entries, e) }

type fakePub struct{ events []broadcast.Event }

func (f *fakePub) Publish(ev broadcast.Event) { f.events = append(f.events, ev) }

type fixture struct {
	coord *Coordinator
	dir   *fakeDirectory
	store *fakeStore
	sink  *fakeSink
	pub   *fakePub
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	f := &fixture{
		dir:   &fakeDirectory{},
		store: newFakeStore(),
		sink:  &fakeSink{},
		pub:   &fakePub{},
		now:   now,
	}
	f.coord = &Coordinator{
		dir:         f.dir,
		store:       f.store,
		sink:        f.sink,
		pub:         f.pub,
		log:         zap.NewNop().Sugar(),
		graceWindow: 5 * time.Minute,
		now:         func() time.Time { return now },
	}
	return f
}

func (f *fixture) withActiveMember(status types.MembershipStatus) {
	ends := f.now.Add(30 * 24 * time.Hour)
	f.dir.member = &models.Member{ID: memberID, CompanyID: companyA, Name: "Jo", Active: true}
	f.dir.membership = &models.Membership{ID: "ms-1", MemberID: memberID, CompanyID: companyA, Status: status, EndsAt: &ends}
}

func scanReq() *ScanRequest {
	return &ScanRequest{DeviceID: "dev-1", CompanyID: companyA, GymID: "gym-1", Identifier: memberID}
}

func requireDomainErr(t *testing.T, err error, code string) *DomainError {
	t.Helper()
	require.Error(t, err)
	derr, ok := err.(*DomainError)
	require.True(t, ok, "expected DomainError, got %T", err)
	require.Equal(t, code, derr.Code)
	return derr
}

func TestScan_InvalidFormatSkipsLookup(t *testing.T) {
	f := newFixture(t)
	req := scanReq()
	req.Identifier = "not-json-not-uuid"

	_, err := f.coord.Scan(context.Background(), req)
	requireDomainErr(t, err, types.CodeInvalidFormat)
	require.Zero(t, f.dir.lookups)
}

func TestScan_CrossTenantMemberLooksMissing(t *testing.T) {
	f := newFixture(t)
	f.withActiveMember(types.MembershipStatusActive)
	f.dir.member.CompanyID = companyB

	_, err := f.coord.Scan(context.Background(), scanReq())
	requireDomainErr(t, err, types.CodeMemberNotFound)
}

func TestScan_InactiveMember(t *testing.T) {
	f := newFixture(t)
	f.withActiveMember(types.MembershipStatusActive)
	f.dir.member.Active = false

	_, err := f.coord.Scan(context.Background(), scanReq())
	requireDomainErr(t, err, types.CodeMemberInactive)
}

func TestScan_NoMembership(t *testing.T) {
	f := newFixture(t)
	f.withActiveMember(types.MembershipStatusActive)
	f.dir.membership = nil

	_, err := f.coord.Scan(context.Background(), scanReq())
	requireDomainErr(t, err, types.CodeNoMembership)
}

func TestScan_FrozenDenialIsAudited(t *testing.T) {
	f := newFixture(t)
	f.withActiveMember(types.MembershipStatusFrozen)

	_, err := f.coord.Scan(context.Background(), scanReq())
	requireDomainErr(t, err, types.CodeMembershipFrozen)

	require.Len(t, f.sink.entries, 1)
	require.False(t, f.sink.entries[0].Success)
	require.Equal(t, types.CodeMembershipFrozen, f.sink.entries[0].Code)
	require.Empty(t, f.pub.events)
}

func TestScan_AdmitsActiveMember(t *testing.T) {
	f := newFixture(t)
	f.withActiveMember(types.MembershipStatusActive)

	res, err := f.coord.Scan(context.Background(), scanReq())
	require.NoError(t, err)
	require.True(t, res.Decision.Allowed)
	require.NotNil(t, res.Visit)
	require.Equal(t, "ms-1", res.Visit.MembershipID)

	require.Len(t, f.sink.entries, 1)
	require.True(t, f.sink.entries[0].Success)
	require.Len(t, f.pub.events, 1)
	require.Equal(t, broadcast.EventTypeVisitCheckin, f.pub.events[0].Type)
	require.Equal(t, companyA, f.pub.events[0].OrgID)
}

func TestScan_PastDueAdmitsWithWarning(t *testing.T) {
	f := newFixture(t)
	f.withActiveMember(types.MembershipStatusPastDue)

	res, err := f.coord.Scan(context.Background(), scanReq())
	require.NoError(t, err)
	require.True(t, res.Decision.Allowed)
	require.True(t, res.Decision.Warning)
	require.Equal(t, types.CodePastDue, res.Decision.Code)
}

func TestScan_DuplicateWithinGraceWindow(t *testing.T) {
	f := newFixture(t)
	f.withActiveMember(types.MembershipStatusActive)
	prior := &models.Visit{ID: "v-prior", MembershipID: "ms-1", GymID: "gym-1", CheckIn: f.now.Add(-2 * time.Minute)}
	f.store.add(prior, companyA)

	_, err := f.coord.Scan(context.Background(), scanReq())
	derr := requireDomainErr(t, err, types.CodeDuplicateCheckin)
	require.NotNil(t, derr.Conflict)
	require.Equal(t, "v-prior", derr.Conflict.ID)
	require.Equal(t, prior.CheckIn, derr.Conflict.CheckIn)
	require.Empty(t, f.store.created)
}

func TestScan_StaleOpenVisitAutoClosed(t *testing.T) {
	f := newFixture(t)
	f.withActiveMember(types.MembershipStatusActive)
	stale := &models.Visit{ID: "v-stale", MembershipID: "ms-1", GymID: "gym-1", CheckIn: f.now.Add(-10 * time.Minute)}
	f.store.add(stale, companyA)

	res, err := f.coord.Scan(context.Background(), scanReq())
	require.NoError(t, err)
	require.Contains(t, f.store.closed, "v-stale")
	require.NotNil(t, stale.CheckOut)
	require.Len(t, f.store.created, 1)
	require.Equal(t, res.Visit.ID, f.store.created[0].ID)
}

func TestScan_RaceLoserGetsDuplicateWithWinner(t *testing.T) {
	f := newFixture(t)
	f.withActiveMember(types.MembershipStatusActive)

	// Simulate the race: the open-visit check sees nothing, then the create
	// hits the uniqueness guard because a concurrent scan won.
	winner := &models.Visit{ID: "v-winner", MembershipID: "ms-1", GymID: "gym-1", CheckIn: f.now}
	raced := false
	f.coord.store = &racingStore{fakeStore: f.store, winner: winner, raced: &raced}

	_, err := f.coord.Scan(context.Background(), scanReq())
	derr := requireDomainErr(t, err, types.CodeDuplicateCheckin)
	require.NotNil(t, derr.Conflict)
	require.Equal(t, "v-winner", derr.Conflict.ID)
}

// racingStore reports no open visit until Create fails, as happens when a
// concurrent scan inserts between the read and the write.
type racingStore struct {
	*fakeStore
	winner *models.Visit
	raced  *bool
}

func (r *racingStore) FindOpen(ctx context.Context, membershipID string) (*models.Visit, error) {
	if !*r.raced {
		return nil, nil
	}
	return r.winner, nil
}

func (r *racingStore) Create(ctx context.Context, membershipID, gymID, deviceID string, at time.Time) (*models.Visit, error) {
	*r.raced = true
	return nil, visit.ErrDuplicateOpenVisit
}

func TestCheckout_FloorsDurationToOneMinute(t *testing.T) {
	f := newFixture(t)
	open := &models.Visit{ID: "v-1", MembershipID: "ms-1", GymID: "gym-1", CheckIn: f.now.Add(-10 * time.Second)}
	f.store.add(open, companyA)

	res, err := f.coord.Checkout(context.Background(), &CheckoutRequest{VisitID: "v-1", CompanyID: companyA})
	require.NoError(t, err)
	require.EqualValues(t, 1, res.DurationMinutes)
	require.NotNil(t, res.Visit.CheckOut)

	require.Len(t, f.pub.events, 1)
	require.Equal(t, broadcast.EventTypeVisitCheckout, f.pub.events[0].Type)
	require.EqualValues(t, 1, f.pub.events[0].Payload["duration_minutes"])
}

func TestCheckout_CrossTenantVisitNotFound(t *testing.T) {
	f := newFixture(t)
	open := &models.Visit{ID: "v-1", MembershipID: "ms-1", GymID: "gym-1", CheckIn: f.now.Add(-time.Hour)}
	f.store.add(open, companyB)

	_, err := f.coord.Checkout(context.Background(), &CheckoutRequest{VisitID: "v-1", CompanyID: companyA})
	requireDomainErr(t, err, types.CodeVisitNotFound)
}

func TestCheckout_AlreadyClosedVisitNotFound(t *testing.T) {
	f := newFixture(t)
	done := f.now.Add(-time.Minute)
	closed := &models.Visit{ID: "v-1", MembershipID: "ms-1", GymID: "gym-1", CheckIn: f.now.Add(-time.Hour), CheckOut: &done}
	f.store.add(closed, companyA)

	_, err := f.coord.Checkout(context.Background(), &CheckoutRequest{VisitID: "v-1", CompanyID: companyA})
	requireDomainErr(t, err, types.CodeVisitNotFound)
}

func TestScan_BiometricIdentifierResolves(t *testing.T) {
	f := newFixture(t)
	f.withActiveMember(types.MembershipStatusActive)
	token := "fp-9c2d1e"
	f.dir.member.BiometricToken = &token

	req := scanReq()
	req.Identifier = "bio:fp-9c2d1e"
	res, err := f.coord.Scan(context.Background(), req)
	require.NoError(t, err)
	require.True(t, res.Decision.Allowed)
}
