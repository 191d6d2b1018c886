package cmd

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("SQL migrations", func() {
	read := func() string {
		sql, err := os.ReadFile(filepath.Join("..", "db", "migrations", "00001_init.sql"))
		Expect(err).NotTo(HaveOccurred())
		return string(sql)
	}

	It("enables zalo notifications for profiles by default", func() {
		Expect(read()).To(MatchRegexp(`(?i)zalo_notification\s+BOOLEAN\s+NOT NULL\s+DEFAULT\s+TRUE`))
	})

	It("blocks deleting a department that meetings reference", func() {
		Expect(read()).To(MatchRegexp(`(?i)department_id\s+BIGINT\s+REFERENCES\s+departments\s*\(id\)\s+ON DELETE RESTRICT`))
	})
})
