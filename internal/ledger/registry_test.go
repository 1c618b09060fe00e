package ledger_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/transcriptledger/internal/app/models"
	"github.com/yigit/transcriptledger/internal/ledger"
	"github.com/yigit/transcriptledger/internal/pkg/apperrors"
)

var (
	admin     = common.HexToAddress("0x1000000000000000000000000000000000000001")
	techU     = common.HexToAddress("0x2000000000000000000000000000000000000002")
	stateU    = common.HexToAddress("0x2000000000000000000000000000000000000003")
	alice     = common.HexToAddress("0x3000000000000000000000000000000000000004")
	bob       = common.HexToAddress("0x3000000000000000000000000000000000000005")
	verifier  = common.HexToAddress("0x4000000000000000000000000000000000000006")
	stranger  = common.HexToAddress("0x5000000000000000000000000000000000000007")
	completed = time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
)

type recorder struct {
	mu     sync.Mutex
	events []ledger.Event
}

func (r *recorder) Publish(evt ledger.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *recorder) types() []ledger.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ledger.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func (r *recorder) last() ledger.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

func testClock() func() time.Time {
	var mu sync.Mutex
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

type fixture struct {
	reg     *ledger.Registry
	journal *ledger.MemoryJournal
	events  *recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{journal: ledger.NewMemoryJournal(), events: &recorder{}}
	reg, err := ledger.Open(context.Background(), f.journal, admin,
		ledger.WithPublisher(f.events),
		ledger.WithClock(testClock()),
		ledger.WithMetrics(prometheus.NewRegistry()),
	)
	require.NoError(t, err)
	f.reg = reg
	return f
}

// seeded registers Tech University, State University, and alice as a student
func seeded(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.reg.RegisterInstitution(ctx, admin, "Tech University", "TU-ACC-2024", techU)
	require.NoError(t, err)
	_, err = f.reg.RegisterInstitution(ctx, admin, "State University", "SU-ACC-2024", stateU)
	require.NoError(t, err)
	require.NoError(t, f.reg.RegisterStudent(ctx, alice, "Alice Johnson", "STU2024001"))
	_, err = f.reg.GrantRole(ctx, admin, models.RoleVerifier, verifier)
	require.NoError(t, err)
	return f
}

func TestScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	instID, err := f.reg.RegisterInstitution(ctx, admin, "Tech University", "TU-ACC-2024", techU)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), instID)
	assert.True(t, f.reg.HasRole(models.RoleInstitution, techU))

	require.NoError(t, f.reg.RegisterStudent(ctx, alice, "Alice Johnson", "STU2024001"))

	tid, err := f.reg.CreateTranscript(ctx, techU, alice, "BSc", "CS", "Sem 8", "QmTest123")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), tid)

	require.NoError(t, f.reg.AddCourse(ctx, techU, tid, "CS101", "Intro to Programming", 3, "A", completed))
	require.NoError(t, f.reg.AddCourse(ctx, techU, tid, "MATH101", "Calculus I", 3, "B", completed))

	_, err = f.reg.GrantRole(ctx, admin, models.RoleVerifier, verifier)
	require.NoError(t, err)
	require.NoError(t, f.reg.VerifyTranscript(ctx, verifier, tid))

	gpa, err := f.reg.CalculateGPA(tid)
	require.NoError(t, err)
	assert.Equal(t, uint64(350), gpa)

	tr, err := f.reg.GetTranscript(tid)
	require.NoError(t, err)
	assert.True(t, tr.IsVerified)
	require.NotNil(t, tr.VerifiedBy)
	assert.Equal(t, verifier, *tr.VerifiedBy)
	assert.Equal(t, uint64(1), tr.InstitutionID)
	assert.Equal(t, alice, tr.StudentAddress)

	assert.Equal(t, []uint64{1}, f.reg.GetStudentTranscripts(alice))
	assert.Len(t, f.reg.GetTranscriptCourses(tid), 2)
	assert.Equal(t, uint64(1), f.reg.GetTotalInstitutions())
	assert.Equal(t, uint64(1), f.reg.GetTotalTranscripts())
	assert.True(t, f.reg.IsRegisteredStudent(alice))
	assert.True(t, f.reg.IsRegisteredInstitution(techU))

	assert.Equal(t, []ledger.EventType{
		ledger.EventRoleGranted, // genesis
		ledger.EventInstitutionRegistered,
		ledger.EventStudentRegistered,
		ledger.EventTranscriptCreated,
		ledger.EventCourseAdded,
		ledger.EventCourseAdded,
		ledger.EventRoleGranted,
		ledger.EventTranscriptVerified,
	}, f.events.types())

	verified, ok := f.events.last().Data.(ledger.TranscriptVerified)
	require.True(t, ok)
	assert.Equal(t, ledger.TranscriptVerified{TranscriptID: tid, Verifier: verifier}, verified)
	assert.Equal(t, uint64(8), f.reg.Head().Seq)
}

func TestCreateTranscriptRequiresInstitutionRole(t *testing.T) {
	ctx := context.Background()
	f := seeded(t)

	for _, caller := range []common.Address{admin, alice, verifier, stranger} {
		t.Run(caller.Hex(), func(t *testing.T) {
			_, err := f.reg.CreateTranscript(ctx, caller, alice, "BSc", "CS", "", "")
			require.Error(t, err)
			assert.ErrorIs(t, err, ledger.ErrUnauthorized)
			assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
		})
	}
	assert.Equal(t, uint64(0), f.reg.GetTotalTranscripts())
}

func TestRegisterStudentTwice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.reg.RegisterStudent(ctx, bob, "Bob", "ST001"))
	first, err := f.reg.GetStudent(bob)
	require.NoError(t, err)

	err = f.reg.RegisterStudent(ctx, bob, "Robert", "ST999")
	assert.ErrorIs(t, err, ledger.ErrStudentAlreadyRegistered)
	assert.ErrorIs(t, err, apperrors.ErrResourceAlreadyExists)

	after, err := f.reg.GetStudent(bob)
	require.NoError(t, err)
	assert.Equal(t, first, after)
}

func TestRegisterStudentEmptyFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	assert.ErrorIs(t, f.reg.RegisterStudent(ctx, bob, "", "ST001"), ledger.ErrEmptyField)
	assert.ErrorIs(t, f.reg.RegisterStudent(ctx, bob, "Bob", "   "), ledger.ErrEmptyField)
	assert.False(t, f.reg.IsRegisteredStudent(bob))
}

func TestRegisterInstitution(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.reg.RegisterInstitution(ctx, stranger, "Fake U", "X-1", stranger)
	assert.ErrorIs(t, err, ledger.ErrUnauthorized)

	_, err = f.reg.RegisterInstitution(ctx, admin, "", "X-1", techU)
	assert.ErrorIs(t, err, ledger.ErrEmptyField)

	_, err = f.reg.RegisterInstitution(ctx, admin, "Tech University", "X-1", common.Address{})
	assert.ErrorIs(t, err, ledger.ErrInvalidAddress)

	id, err := f.reg.RegisterInstitution(ctx, admin, "Tech University", "TU-ACC-2024", techU)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	_, err = f.reg.RegisterInstitution(ctx, admin, "Tech University Again", "TU-2", techU)
	assert.ErrorIs(t, err, ledger.ErrInstitutionAlreadyRegistered)

	inst, err := f.reg.GetInstitution(1)
	require.NoError(t, err)
	assert.Equal(t, "Tech University", inst.Name)
	assert.True(t, inst.IsActive)

	_, err = f.reg.GetInstitution(2)
	assert.ErrorIs(t, err, ledger.ErrInstitutionNotFound)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestCalculateGPA(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		courses []struct {
			credits int
			grade   string
		}
		want uint64
	}{
		{name: "no courses", want: 0},
		{
			name: "A and B equal credits",
			courses: []struct {
				credits int
				grade   string
			}{{3, "A"}, {3, "B"}},
			want: 350,
		},
		{
			name: "weighted and truncated",
			courses: []struct {
				credits int
				grade   string
			}{{4, "A-"}, {3, "B+"}, {2, "c"}},
			// (1480 + 990 + 400) / 9 = 318.88
			want: 318,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := seeded(t)
			tid, err := f.reg.CreateTranscript(ctx, techU, alice, "BSc", "CS", "", "")
			require.NoError(t, err)
			for i, c := range tt.courses {
				require.NoError(t, f.reg.AddCourse(ctx, techU, tid, fmt.Sprintf("C%d", i), "Course", c.credits, c.grade, completed))
			}
			gpa, err := f.reg.CalculateGPA(tid)
			require.NoError(t, err)
			assert.Equal(t, tt.want, gpa)
		})
	}
}

func TestCalculateGPAUnknownTranscript(t *testing.T) {
	f := newFixture(t)
	_, err := f.reg.CalculateGPA(7)
	assert.ErrorIs(t, err, ledger.ErrTranscriptNotFound)
}

func TestTranscriptIDNotConsumedOnFailure(t *testing.T) {
	ctx := context.Background()
	f := seeded(t)

	_, err := f.reg.CreateTranscript(ctx, techU, bob, "BSc", "CS", "", "")
	assert.ErrorIs(t, err, ledger.ErrStudentNotRegistered)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	_, err = f.reg.CreateTranscript(ctx, techU, alice, "", "CS", "", "")
	assert.ErrorIs(t, err, ledger.ErrEmptyField)

	id, err := f.reg.CreateTranscript(ctx, techU, alice, "BSc", "CS", "", "")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)
}

func TestVerifyTranscriptOnce(t *testing.T) {
	ctx := context.Background()
	f := seeded(t)
	tid, err := f.reg.CreateTranscript(ctx, techU, alice, "BSc", "CS", "", "")
	require.NoError(t, err)

	err = f.reg.VerifyTranscript(ctx, stranger, tid)
	assert.ErrorIs(t, err, ledger.ErrUnauthorized)

	err = f.reg.VerifyTranscript(ctx, verifier, 99)
	assert.ErrorIs(t, err, ledger.ErrTranscriptNotFound)

	require.NoError(t, f.reg.VerifyTranscript(ctx, verifier, tid))
	head := f.reg.Head()

	err = f.reg.VerifyTranscript(ctx, admin, tid)
	assert.ErrorIs(t, err, ledger.ErrAlreadyVerified)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyVerified)
	assert.Equal(t, head, f.reg.Head())

	tr, err := f.reg.GetTranscript(tid)
	require.NoError(t, err)
	assert.True(t, tr.IsVerified)
	assert.Equal(t, verifier, *tr.VerifiedBy)
}

func TestOnlyIssuerMayAmendTranscript(t *testing.T) {
	ctx := context.Background()
	f := seeded(t)
	tid, err := f.reg.CreateTranscript(ctx, techU, alice, "BSc", "CS", "", "")
	require.NoError(t, err)

	err = f.reg.AddCourse(ctx, stateU, tid, "CS101", "Intro", 3, "A", completed)
	assert.ErrorIs(t, err, ledger.ErrNotIssuer)

	err = f.reg.SetGraduationDate(ctx, stateU, tid, completed)
	assert.ErrorIs(t, err, ledger.ErrNotIssuer)

	assert.Empty(t, f.reg.GetTranscriptCourses(tid))
}

func TestAddCourseValidation(t *testing.T) {
	ctx := context.Background()
	f := seeded(t)
	tid, err := f.reg.CreateTranscript(ctx, techU, alice, "BSc", "CS", "", "")
	require.NoError(t, err)

	tests := []struct {
		name    string
		id      uint64
		code    string
		credits int
		grade   string
		date    time.Time
		wantErr error
	}{
		{"unknown transcript", 42, "CS101", 3, "A", completed, ledger.ErrTranscriptNotFound},
		{"empty code", tid, "", 3, "A", completed, ledger.ErrEmptyField},
		{"zero credits", tid, "CS101", 0, "A", completed, ledger.ErrInvalidCredits},
		{"negative credits", tid, "CS101", -2, "A", completed, ledger.ErrInvalidCredits},
		{"credits above limit", tid, "CS101", ledger.MaxCredits + 1, "A", completed, ledger.ErrInvalidCredits},
		{"credits near int64 max", tid, "CS101", 1 << 62, "A", completed, ledger.ErrInvalidCredits},
		{"unknown grade", tid, "CS101", 3, "E", completed, ledger.ErrInvalidGrade},
		{"missing date", tid, "CS101", 3, "A", time.Time{}, ledger.ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.reg.AddCourse(ctx, techU, tt.id, tt.code, "Course", tt.credits, tt.grade, tt.date)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Empty(t, f.reg.GetTranscriptCourses(tid))

	require.NoError(t, f.reg.AddCourse(ctx, techU, tid, "CS101", "Intro", 3, " a- ", completed))
	require.NoError(t, f.reg.AddCourse(ctx, techU, tid, "CS101", "Intro retake", 3, "B", completed))
	courses := f.reg.GetTranscriptCourses(tid)
	require.Len(t, courses, 2)
	assert.Equal(t, "A-", courses[0].Grade)
}

func TestCalculateGPAAtCreditLimit(t *testing.T) {
	ctx := context.Background()
	f := seeded(t)
	tid, err := f.reg.CreateTranscript(ctx, techU, alice, "BSc", "CS", "", "")
	require.NoError(t, err)

	require.NoError(t, f.reg.AddCourse(ctx, techU, tid, "THESIS", "Thesis", ledger.MaxCredits, "A", completed))
	require.NoError(t, f.reg.AddCourse(ctx, techU, tid, "SEM", "Seminar", 1, "F", completed))

	gpa, err := f.reg.CalculateGPA(tid)
	require.NoError(t, err)
	// (400*100 + 0*1) / 101
	assert.Equal(t, uint64(396), gpa)
}

func TestVerifiedTranscriptIsFinal(t *testing.T) {
	ctx := context.Background()
	f := seeded(t)
	tid, err := f.reg.CreateTranscript(ctx, techU, alice, "BSc", "CS", "", "")
	require.NoError(t, err)
	require.NoError(t, f.reg.SetGraduationDate(ctx, techU, tid, completed))
	require.NoError(t, f.reg.VerifyTranscript(ctx, verifier, tid))

	err = f.reg.AddCourse(ctx, techU, tid, "CS101", "Intro", 3, "A", completed)
	assert.ErrorIs(t, err, ledger.ErrAlreadyVerified)

	err = f.reg.SetGraduationDate(ctx, techU, tid, completed.AddDate(0, 1, 0))
	assert.ErrorIs(t, err, ledger.ErrAlreadyVerified)

	tr, err := f.reg.GetTranscript(tid)
	require.NoError(t, err)
	require.NotNil(t, tr.GraduationDate)
	assert.True(t, completed.Equal(*tr.GraduationDate))
}

func TestRoles(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	changed, err := f.reg.GrantRole(ctx, stranger, models.RoleVerifier, stranger)
	assert.ErrorIs(t, err, ledger.ErrUnauthorized)
	assert.False(t, changed)

	changed, err = f.reg.GrantRole(ctx, admin, models.RoleVerifier, verifier)
	require.NoError(t, err)
	assert.True(t, changed)

	head := f.reg.Head()
	changed, err = f.reg.GrantRole(ctx, admin, models.RoleVerifier, verifier)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, head, f.reg.Head())

	_, err = f.reg.GrantRole(ctx, admin, models.Role("DEAN"), verifier)
	assert.ErrorIs(t, err, ledger.ErrInvalidRole)

	changed, err = f.reg.RevokeRole(ctx, admin, models.RoleInstitution, verifier)
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = f.reg.RevokeRole(ctx, admin, models.RoleAdmin, admin)
	assert.ErrorIs(t, err, ledger.ErrLastAdmin)
	assert.True(t, f.reg.HasRole(models.RoleAdmin, admin))

	_, err = f.reg.GrantRole(ctx, admin, models.RoleAdmin, verifier)
	require.NoError(t, err)
	changed, err = f.reg.RevokeRole(ctx, verifier, models.RoleAdmin, admin)
	require.NoError(t, err)
	assert.True(t, changed)

	assert.Equal(t, []models.Role{models.RoleAdmin, models.RoleVerifier}, f.reg.RolesOf(verifier))
	assert.Empty(t, f.reg.RolesOf(admin))
}

func TestDeactivateInstitution(t *testing.T) {
	ctx := context.Background()
	f := seeded(t)

	err := f.reg.DeactivateInstitution(ctx, techU, 1)
	assert.ErrorIs(t, err, ledger.ErrUnauthorized)

	err = f.reg.DeactivateInstitution(ctx, admin, 9)
	assert.ErrorIs(t, err, ledger.ErrInstitutionNotFound)

	require.NoError(t, f.reg.DeactivateInstitution(ctx, admin, 1))
	assert.False(t, f.reg.HasRole(models.RoleInstitution, techU))

	inst, err := f.reg.GetInstitution(1)
	require.NoError(t, err)
	assert.False(t, inst.IsActive)

	_, err = f.reg.CreateTranscript(ctx, techU, alice, "BSc", "CS", "", "")
	assert.ErrorIs(t, err, ledger.ErrUnauthorized)

	// a re-granted role does not revive an inactive institution
	_, err = f.reg.GrantRole(ctx, admin, models.RoleInstitution, techU)
	require.NoError(t, err)
	_, err = f.reg.CreateTranscript(ctx, techU, alice, "BSc", "CS", "", "")
	assert.ErrorIs(t, err, ledger.ErrInstitutionInactive)

	err = f.reg.DeactivateInstitution(ctx, admin, 1)
	assert.ErrorIs(t, err, ledger.ErrAlreadyDeactivated)
}

func TestInstitutionRoleWithoutRecord(t *testing.T) {
	ctx := context.Background()
	f := seeded(t)
	_, err := f.reg.GrantRole(ctx, admin, models.RoleInstitution, stranger)
	require.NoError(t, err)

	_, err = f.reg.CreateTranscript(ctx, stranger, alice, "BSc", "CS", "", "")
	assert.ErrorIs(t, err, ledger.ErrCallerNotInstitution)
}

func TestListInstitutions(t *testing.T) {
	f := seeded(t)

	page, total := f.reg.ListInstitutions(0, 1)
	assert.Equal(t, 2, total)
	require.Len(t, page, 1)
	assert.Equal(t, "Tech University", page[0].Name)

	page, _ = f.reg.ListInstitutions(1, 10)
	require.Len(t, page, 1)
	assert.Equal(t, "State University", page[0].Name)

	page, _ = f.reg.ListInstitutions(5, 10)
	assert.Empty(t, page)
}

func TestReadsOnUnknownIdentities(t *testing.T) {
	f := newFixture(t)

	assert.Empty(t, f.reg.GetStudentTranscripts(stranger))
	assert.NotNil(t, f.reg.GetStudentTranscripts(stranger))
	assert.Empty(t, f.reg.GetTranscriptCourses(3))
	assert.False(t, f.reg.IsRegisteredStudent(stranger))
	assert.False(t, f.reg.IsRegisteredInstitution(stranger))

	_, err := f.reg.GetStudent(stranger)
	assert.ErrorIs(t, err, ledger.ErrStudentNotRegistered)
	_, err = f.reg.GetTranscript(0)
	assert.ErrorIs(t, err, ledger.ErrTranscriptNotFound)
}

func TestReplayRebuildsState(t *testing.T) {
	ctx := context.Background()
	f := seeded(t)
	tid, err := f.reg.CreateTranscript(ctx, techU, alice, "BSc", "CS", "Sem 8", "QmTest123")
	require.NoError(t, err)
	require.NoError(t, f.reg.AddCourse(ctx, techU, tid, "CS101", "Intro", 3, "A", completed))
	require.NoError(t, f.reg.AddCourse(ctx, techU, tid, "MATH101", "Calculus", 3, "B", completed))
	require.NoError(t, f.reg.SetGraduationDate(ctx, techU, tid, completed))
	require.NoError(t, f.reg.VerifyTranscript(ctx, verifier, tid))
	require.NoError(t, f.reg.DeactivateInstitution(ctx, admin, 2))

	replayEvents := &recorder{}
	replayed, err := ledger.Load(ctx, f.journal, ledger.WithPublisher(replayEvents))
	require.NoError(t, err)

	assert.Equal(t, f.reg.Head(), replayed.Head())
	assert.Empty(t, replayEvents.types())

	for _, id := range []uint64{1, 2} {
		want, err := f.reg.GetInstitution(id)
		require.NoError(t, err)
		got, err := replayed.GetInstitution(id)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	want, err := f.reg.GetTranscript(tid)
	require.NoError(t, err)
	got, err := replayed.GetTranscript(tid)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, f.reg.GetTranscriptCourses(tid), replayed.GetTranscriptCourses(tid))
	assert.Equal(t, f.reg.RolesOf(verifier), replayed.RolesOf(verifier))
	assert.False(t, replayed.HasRole(models.RoleInstitution, stateU))

	gpa, err := replayed.CalculateGPA(tid)
	require.NoError(t, err)
	assert.Equal(t, uint64(350), gpa)

	// writes continue the chain after replay
	_, err = replayed.CreateTranscript(ctx, techU, alice, "MSc", "CS", "", "")
	require.NoError(t, err)
	_, err = ledger.VerifyChain(f.journal.Entries())
	require.NoError(t, err)
}

func TestOpenRequiresAdminForEmptyJournal(t *testing.T) {
	_, err := ledger.Open(context.Background(), ledger.NewMemoryJournal(), common.Address{})
	assert.ErrorIs(t, err, ledger.ErrInvalidAddress)
}

func TestOpenExistingJournalSkipsGenesis(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	reopened, err := ledger.Open(ctx, f.journal, stranger)
	require.NoError(t, err)
	assert.Equal(t, 1, f.journal.Len())
	assert.True(t, reopened.HasRole(models.RoleAdmin, admin))
	assert.False(t, reopened.HasRole(models.RoleAdmin, stranger))
}

type failingJournal struct {
	*ledger.MemoryJournal
	fail bool
}

func (j *failingJournal) Append(ctx context.Context, e ledger.Entry) error {
	if j.fail {
		return errors.New("disk full")
	}
	return j.MemoryJournal.Append(ctx, e)
}

func TestJournalFailureLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	j := &failingJournal{MemoryJournal: ledger.NewMemoryJournal()}
	events := &recorder{}
	reg, err := ledger.Open(ctx, j, admin, ledger.WithPublisher(events))
	require.NoError(t, err)

	j.fail = true
	_, err = reg.RegisterInstitution(ctx, admin, "Tech University", "TU-ACC-2024", techU)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, uint64(0), reg.GetTotalInstitutions())
	assert.False(t, reg.HasRole(models.RoleInstitution, techU))
	assert.Len(t, events.types(), 1)

	j.fail = false
	id, err := reg.RegisterInstitution(ctx, admin, "Tech University", "TU-ACC-2024", techU)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)
}

func TestConcurrentWritesAssignSequentialIDs(t *testing.T) {
	ctx := context.Background()
	f := seeded(t)

	const n = 50
	ids := make(chan uint64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := f.reg.CreateTranscript(ctx, techU, alice, "BSc", "CS", "", "")
			assert.NoError(t, err)
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[uint64]bool, n)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	for id := uint64(1); id <= n; id++ {
		assert.True(t, seen[id], "missing id %d", id)
	}
	assert.Len(t, f.reg.GetStudentTranscripts(alice), n)
	_, err := ledger.VerifyChain(f.journal.Entries())
	require.NoError(t, err)
}

func TestRegistriesSharingAJournal(t *testing.T) {
	ctx := context.Background()
	f := seeded(t)
	replicaEvents := &recorder{}
	replica, err := ledger.Load(ctx, f.journal, ledger.WithPublisher(replicaEvents), ledger.WithClock(testClock()))
	require.NoError(t, err)
	require.Equal(t, f.reg.Head(), replica.Head())

	require.NoError(t, f.reg.RegisterStudent(ctx, bob, "Bob Smith", "STU2024002"))
	assert.False(t, replica.IsRegisteredStudent(bob))

	// the stale write is rejected, but the replica catches up on the way out
	err = replica.RegisterStudent(ctx, stranger, "Sam Stranger", "STU2024003")
	require.ErrorIs(t, err, ledger.ErrJournalConflict)
	assert.True(t, replica.IsRegisteredStudent(bob))
	assert.False(t, replica.IsRegisteredStudent(stranger))
	assert.Equal(t, f.reg.Head(), replica.Head())
	assert.Equal(t, []ledger.EventType{ledger.EventStudentRegistered}, replicaEvents.types())

	require.NoError(t, replica.RegisterStudent(ctx, stranger, "Sam Stranger", "STU2024003"))

	applied, err := f.reg.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
	assert.True(t, f.reg.IsRegisteredStudent(stranger))

	applied, err = f.reg.Sync(ctx)
	require.NoError(t, err)
	assert.Zero(t, applied)

	_, err = ledger.VerifyChain(f.journal.Entries())
	require.NoError(t, err)
}

func TestRetryAfterConflictSeesOtherWriters(t *testing.T) {
	ctx := context.Background()
	f := seeded(t)
	replica, err := ledger.Load(ctx, f.journal)
	require.NoError(t, err)

	require.NoError(t, f.reg.RegisterStudent(ctx, bob, "Bob Smith", "STU2024002"))

	err = replica.RegisterStudent(ctx, bob, "Bob Smith", "STU2024002")
	require.ErrorIs(t, err, ledger.ErrJournalConflict)

	err = replica.RegisterStudent(ctx, bob, "Bob Smith", "STU2024002")
	assert.ErrorIs(t, err, ledger.ErrStudentAlreadyRegistered)
	assert.Equal(t, f.reg.Head(), replica.Head())
}

func TestDeactivatedIssuerCannotAmendTranscripts(t *testing.T) {
	ctx := context.Background()
	f := seeded(t)
	tid, err := f.reg.CreateTranscript(ctx, techU, alice, "BSc", "CS", "", "")
	require.NoError(t, err)

	require.NoError(t, f.reg.DeactivateInstitution(ctx, admin, 1))
	_, err = f.reg.GrantRole(ctx, admin, models.RoleInstitution, techU)
	require.NoError(t, err)

	err = f.reg.AddCourse(ctx, techU, tid, "CS101", "Intro", 3, "A", completed)
	assert.ErrorIs(t, err, ledger.ErrInstitutionInactive)
	err = f.reg.SetGraduationDate(ctx, techU, tid, completed)
	assert.ErrorIs(t, err, ledger.ErrInstitutionInactive)

	assert.Empty(t, f.reg.GetTranscriptCourses(tid))
	transcript, err := f.reg.GetTranscript(tid)
	require.NoError(t, err)
	assert.Nil(t, transcript.GraduationDate)
}
