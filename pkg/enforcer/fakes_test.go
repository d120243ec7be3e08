package enforcer

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/require"
	"github.com/younsl/volreaper/internal/logging"
	"github.com/younsl/volreaper/internal/models"
	awsclient "github.com/younsl/volreaper/pkg/aws"
	"github.com/younsl/volreaper/pkg/pricing"
	"github.com/younsl/volreaper/pkg/report"
)

type createdSnapshot struct {
	volumeID    string
	description string
	tags        map[string]string
}

type fakeEC2 struct {
	volumes   map[string]*models.VolumeInfo
	snapshots []models.SnapshotInfo

	listSnapshotsErr  error
	snapshotErr       map[string]error
	deleteErr         map[string]error
	deleteSnapshotErr map[string]error

	calls   []string
	created []createdSnapshot
	nextID  int
}

func newFakeEC2() *fakeEC2 {
	return &fakeEC2{volumes: map[string]*models.VolumeInfo{}}
}

func (f *fakeEC2) GetVolume(_ context.Context, id string) (*models.VolumeInfo, error) {
	v, ok := f.volumes[id]
	if !ok {
		return nil, fmt.Errorf("error describing volume %s: %w", id, awsclient.ErrVolumeNotFound)
	}
	out := *v
	return &out, nil
}

func (f *fakeEC2) CreateSnapshot(_ context.Context, volumeID, description string, tags map[string]string) (string, error) {
	f.calls = append(f.calls, "snapshot:"+volumeID)
	if err := f.snapshotErr[volumeID]; err != nil {
		return "", err
	}
	f.nextID++
	f.created = append(f.created, createdSnapshot{volumeID: volumeID, description: description, tags: tags})
	return fmt.Sprintf("snap-%04d", f.nextID), nil
}

func (f *fakeEC2) DeleteVolume(_ context.Context, id string) error {
	f.calls = append(f.calls, "delete:"+id)
	if err := f.deleteErr[id]; err != nil {
		return err
	}
	delete(f.volumes, id)
	return nil
}

func (f *fakeEC2) ListSnapshots(context.Context) ([]models.SnapshotInfo, error) {
	if f.listSnapshotsErr != nil {
		return nil, f.listSnapshotsErr
	}
	return f.snapshots, nil
}

func (f *fakeEC2) DeleteSnapshot(_ context.Context, id string) error {
	f.calls = append(f.calls, "delete-snapshot:"+id)
	return f.deleteSnapshotErr[id]
}

type fakeStore struct {
	objects map[string][]byte
	puts    []string
	putErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (f *fakeStore) ListKeys(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *fakeStore) Get(_ context.Context, key string) ([]byte, error) {
	body, ok := f.objects[key]
	if !ok {
		return nil, fmt.Errorf("no such key %s", key)
	}
	return body, nil
}

func (f *fakeStore) Put(_ context.Context, key string, body []byte, _ string) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.puts = append(f.puts, key)
	f.objects[key] = body
	return nil
}

type publication struct {
	subject string
	body    string
}

type fakePublisher struct {
	sent []publication
	err  error
}

func (f *fakePublisher) Publish(_ context.Context, subject, body string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, publication{subject: subject, body: body})
	return fmt.Sprintf("msg-%d", len(f.sent)), nil
}

type fixedPricer struct{}

func (fixedPricer) MonthlyCost(_ context.Context, _ string, sizeGB int, _ string) (float64, pricing.Source) {
	return float64(sizeGB) * 0.08, pricing.SourceDefault
}

func testOptions() Options {
	return Options{
		Policy: Policy{
			RetentionDays:          15,
			UnattachedTagKey:       "UnattachedSince",
			DoNotDeleteValue:       "do-not-delete",
			SnapshotMarker:         "Snapshot before deleting Volume",
			ManagedByValue:         "volreaper",
			LegacyDescriptionMatch: true,
		},
		RevalidateBeforeDelete: true,
	}
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// unattached builds a report row for an available volume with the marker set
func unattached(id, since string, extra map[string]string) models.ReportRow {
	tags := map[string]string{"UnattachedSince": since}
	for k, v := range extra {
		tags[k] = v
	}
	return models.ReportRow{
		VolumeID:        id,
		State:           models.VolumeStateAvailable,
		CreateDate:      "2023-11-01",
		UnattachedSince: since,
		Tags:            tags,
	}
}

type fixture struct {
	ec2       *fakeEC2
	store     *fakeStore
	publisher *fakePublisher
	opts      Options
}

func newFixture() *fixture {
	return &fixture{
		ec2:       newFakeEC2(),
		store:     newFakeStore(),
		publisher: &fakePublisher{},
		opts:      testOptions(),
	}
}

// addReport stores a report and mirrors its rows as live volumes
func (fx *fixture) addReport(t *testing.T, at time.Time, rows ...models.ReportRow) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, report.WriteInventory(&buf, rows))
	key := report.InventoryKey(at)
	fx.store.objects[key] = buf.Bytes()

	for _, r := range rows {
		fx.ec2.volumes[r.VolumeID] = &models.VolumeInfo{
			VolumeID:   r.VolumeID,
			State:      r.State,
			VolumeType: "gp3",
			Size:       100,
			Region:     "us-east-1",
			Tags:       r.Tags,
		}
	}
	return key
}

func (fx *fixture) enforcer(now time.Time) *Enforcer {
	return New(fx.ec2, fx.store, fx.publisher, testclock.NewClock(now), logging.Discard(), fx.opts)
}
