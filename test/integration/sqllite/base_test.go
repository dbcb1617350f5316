package sqllite

import (
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/skipperbent/pecee-legacy-models/pkg/legacymodels"
)

var dbSeq int32

func runTestWithSetup(t *testing.T, testFunc func(t *testing.T, registry *legacymodels.Registry)) {
	filename := fmt.Sprintf("legacy-models-test-%d.db", atomic.AddInt32(&dbSeq, 1))
	defer os.Remove(filename)
	setupSqlLiteTestInstance(filename)

	registry, err := legacymodels.Open()
	require.NoError(t, err)
	defer registry.DB.Close()

	testFunc(t, registry)
}

func setupSqlLiteTestInstance(filename string) {
	os.Setenv("PLM_DATABASE_TYPE", "SQLLITE")
	os.Setenv("PLM_DATABASE_SQLLITE_FILE_NAME", filename)
	os.Setenv("PLM_APP_SECRET", "integration-test-secret")
}

// testJar is an in-memory stand-in for a browser cookie round trip.
type testJar struct {
	values map[string]string
}

func newTestJar() *testJar {
	return &testJar{values: make(map[string]string)}
}

func (j *testJar) Exists(name string) bool { _, ok := j.values[name]; return ok }
func (j *testJar) Get(name string) string  { return j.values[name] }
func (j *testJar) Set(name, value string, expires time.Time) {
	j.values[name] = value
}
func (j *testJar) Delete(name string) { delete(j.values, name) }
