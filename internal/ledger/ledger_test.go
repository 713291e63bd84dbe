//nolint:varnamelen // Test files use idiomatic short variable names (t, tt, etc.)
package ledger_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/pkovacs/cloudkeeper/internal/ledger"
)

func TestMarkDoneAndDone(t *testing.T) {
	t.Parallel()

	g := NewWithT(t)

	led := ledger.New(filepath.Join(t.TempDir(), "ledger.json"))

	g.Expect(led.Done("/src/a.jpg")).To(BeFalse())
	g.Expect(led.Len()).To(Equal(0))

	led.MarkDone("/src/a.jpg")

	g.Expect(led.Done("/src/a.jpg")).To(BeTrue())
	g.Expect(led.Done("/src/b.jpg")).To(BeFalse())
	g.Expect(led.Len()).To(Equal(1))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	g := NewWithT(t)

	path := filepath.Join(t.TempDir(), "ledger.json")

	led := ledger.New(path)
	led.MarkDone("/src/a.jpg")
	led.MarkDone("/src/b.jpg")

	g.Expect(led.Save()).To(Succeed())

	loaded, err := ledger.Load(path)
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(loaded.Len()).To(Equal(2))
	g.Expect(loaded.Done("/src/a.jpg")).To(BeTrue())
	g.Expect(loaded.Done("/src/b.jpg")).To(BeTrue())
	g.Expect(loaded.Done("/src/c.jpg")).To(BeFalse())
}

func TestLoadMissingFileYieldsEmptyLedger(t *testing.T) {
	t.Parallel()

	g := NewWithT(t)

	led, err := ledger.Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(led.Len()).To(Equal(0))
}

func TestLoadCorruptFileIsFatal(t *testing.T) {
	t.Parallel()

	g := NewWithT(t)

	path := filepath.Join(t.TempDir(), "ledger.json")
	g.Expect(os.WriteFile(path, []byte("{not json"), 0o600)).To(Succeed())

	_, err := ledger.Load(path)
	g.Expect(err).Should(HaveOccurred())
	g.Expect(err.Error()).To(ContainSubstring("not in the expected format"))
}

func TestSaveReplacesExistingFile(t *testing.T) {
	t.Parallel()

	g := NewWithT(t)

	path := filepath.Join(t.TempDir(), "ledger.json")

	first := ledger.New(path)
	first.MarkDone("/src/a.jpg")
	g.Expect(first.Save()).To(Succeed())

	second := ledger.New(path)
	second.MarkDone("/src/b.jpg")
	g.Expect(second.Save()).To(Succeed())

	loaded, err := ledger.Load(path)
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(loaded.Done("/src/a.jpg")).To(BeFalse(), "save must replace, not merge")
	g.Expect(loaded.Done("/src/b.jpg")).To(BeTrue())
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	g := NewWithT(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.json")

	led := ledger.New(path)
	led.MarkDone("/src/a.jpg")
	g.Expect(led.Save()).To(Succeed())

	entries, err := os.ReadDir(dir)
	g.Expect(err).ShouldNot(HaveOccurred())

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}

	g.Expect(names).To(ConsistOf("ledger.json", "ledger.json.lock"))
}

func TestConcurrentMarkDone(t *testing.T) {
	t.Parallel()

	g := NewWithT(t)

	led := ledger.New(filepath.Join(t.TempDir(), "ledger.json"))

	const workers = 8

	const perWorker = 100

	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := range perWorker {
				led.MarkDone(filepath.Join("/src", string(rune('a'+w)), string(rune('0'+i%10))))
			}
		}()
	}

	wg.Wait()

	// 8 workers x 10 distinct keys each
	g.Expect(led.Len()).To(Equal(workers * 10))
}
