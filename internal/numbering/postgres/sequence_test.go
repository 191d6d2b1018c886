package postgres_test

import (
	"context"
	"sync"
	"testing"

	"github.com/frahmantamala/meeting-manager/internal/database"
	numberingPostgres "github.com/frahmantamala/meeting-manager/internal/numbering/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestSequencePostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Sequence Postgres Suite")
}

var _ = Describe("SequenceAllocator", func() {
	var (
		ctx     context.Context
		handles *database.Handles
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		handles, err = database.OpenSQLite("")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(handles.Close()).To(Succeed())
	})

	It("should start each year at one and count up", func() {
		alloc := numberingPostgres.NewSequenceAllocator(handles.Gorm)

		Expect(alloc.Next(ctx, 2026)).To(Equal(1))
		Expect(alloc.Next(ctx, 2026)).To(Equal(2))
		Expect(alloc.Next(ctx, 2027)).To(Equal(1))
		Expect(alloc.Next(ctx, 2026)).To(Equal(3))
	})

	It("should give back the increment when the transaction rolls back", func() {
		alloc := numberingPostgres.NewSequenceAllocator(handles.Gorm)
		Expect(alloc.Next(ctx, 2026)).To(Equal(1))

		_ = handles.Gorm.Transaction(func(tx *gorm.DB) error {
			v, err := numberingPostgres.NewSequenceAllocator(tx).Next(ctx, 2026)
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(2))
			return gorm.ErrInvalidTransaction
		})

		Expect(alloc.Next(ctx, 2026)).To(Equal(2))
	})

	It("should hand out distinct values to concurrent callers", func() {
		const workers = 20
		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			seen = map[int]bool{}
		)

		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				err := handles.Gorm.Transaction(func(tx *gorm.DB) error {
					v, err := numberingPostgres.NewSequenceAllocator(tx).Next(ctx, 2026)
					if err != nil {
						return err
					}
					mu.Lock()
					seen[v] = true
					mu.Unlock()
					return nil
				})
				Expect(err).NotTo(HaveOccurred())
			}()
		}
		wg.Wait()

		Expect(seen).To(HaveLen(workers))
		for i := 1; i <= workers; i++ {
			Expect(seen).To(HaveKey(i))
		}
	})
})
