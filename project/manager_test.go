package project_test

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"ola/project"
)

var _ = Describe("Manager", func() {
	var (
		base string
		m    *project.Manager
	)

	BeforeEach(func() {
		base = filepath.Join(GinkgoT().TempDir(), "data", "projects")
		var err error
		m, err = project.NewManagerAt(base)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Create and Load", func() {
		It("writes project.json and a files directory", func() {
			p, err := m.Create("Alpha")
			Expect(err).NotTo(HaveOccurred())
			Expect(p.ID).NotTo(BeEmpty())

			Expect(filepath.Join(base, p.ID, "project.json")).To(BeARegularFile())
			Expect(filepath.Join(base, p.ID, "files")).To(BeADirectory())

			loaded, err := m.Load(p.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Name).To(Equal("Alpha"))
		})

		It("rejects an empty name", func() {
			_, err := m.Create("   ")
			Expect(err).To(HaveOccurred())
		})

		It("returns ErrNotFound for unknown ids", func() {
			_, err := m.Load("nope")
			Expect(errors.Is(err, project.ErrNotFound)).To(BeTrue())
		})
	})

	Describe("List", func() {
		It("orders projects by most recent update", func() {
			a, _ := m.Create("a")
			b, _ := m.Create("b")
			b.UpdatedAt = a.UpdatedAt.Add(-time.Hour)
			Expect(m.Save(b)).To(Succeed())

			list, err := m.List()
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(2))
			Expect(list[0].Name).To(Equal("a"))
		})
	})

	Describe("Delete", func() {
		It("removes the directory and clears the active marker", func() {
			p, _ := m.Create("gone")
			Expect(m.SetActive(p.ID)).To(Succeed())
			Expect(m.Delete(p.ID)).To(Succeed())

			Expect(filepath.Join(base, p.ID)).NotTo(BeADirectory())
			active, err := m.Active()
			Expect(err).NotTo(HaveOccurred())
			Expect(active).To(BeEmpty())
		})

		It("removes the active marker file itself", func() {
			p, _ := m.Create("gone")
			Expect(m.SetActive(p.ID)).To(Succeed())
			Expect(m.Delete(p.ID)).To(Succeed())

			Expect(filepath.Join(filepath.Dir(base), "active_project")).NotTo(BeAnExistingFile())
		})

		It("keeps the marker when another project is deleted", func() {
			keep, _ := m.Create("keep")
			drop, _ := m.Create("drop")
			Expect(m.SetActive(keep.ID)).To(Succeed())
			Expect(m.Delete(drop.ID)).To(Succeed())

			active, err := m.Active()
			Expect(err).NotTo(HaveOccurred())
			Expect(active).To(Equal(keep.ID))
		})

		It("drops a marker left pointing at a removed project", func() {
			p, _ := m.Create("vanished")
			Expect(m.SetActive(p.ID)).To(Succeed())
			Expect(os.RemoveAll(filepath.Join(base, p.ID))).To(Succeed())

			active, err := m.Active()
			Expect(err).NotTo(HaveOccurred())
			Expect(active).To(BeEmpty())
			Expect(filepath.Join(filepath.Dir(base), "active_project")).NotTo(BeAnExistingFile())
		})

		It("reports unknown projects", func() {
			err := m.Delete("missing")
			Expect(err).To(MatchError(ContainSubstring("project 'missing' not found")))
		})
	})

	Describe("Edit", func() {
		It("renames and bumps updated_at", func() {
			p, _ := m.Create("old")
			before := p.UpdatedAt
			time.Sleep(2 * time.Millisecond)

			edited, err := m.Edit(p.ID, "new")
			Expect(err).NotTo(HaveOccurred())
			Expect(edited.Name).To(Equal("new"))
			Expect(edited.UpdatedAt).To(BeTemporally(">", before))
		})
	})

	Describe("active project", func() {
		It("refuses unknown ids", func() {
			Expect(m.SetActive("missing")).NotTo(Succeed())
		})

		It("drops a stale marker", func() {
			marker := filepath.Join(filepath.Dir(base), "active_project")
			Expect(os.WriteFile(marker, []byte("ghost"), 0644)).To(Succeed())

			active, err := m.Active()
			Expect(err).NotTo(HaveOccurred())
			Expect(active).To(BeEmpty())
			Expect(marker).NotTo(BeAnExistingFile())
		})
	})

	Describe("Resolve", func() {
		It("matches names case-insensitively", func() {
			p, _ := m.Create("Research")
			got, err := m.Resolve("research")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(p.ID))
		})

		It("falls back to the active project", func() {
			p, _ := m.Create("Active one")
			Expect(m.SetActive(p.ID)).To(Succeed())
			got, err := m.Resolve("")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(p.ID))
		})

		It("creates the default project when nothing is active", func() {
			got, err := m.Resolve("")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(project.DefaultID))
			Expect(got.Name).To(Equal("Default"))
		})
	})

	Describe("files", func() {
		var p *project.Project

		BeforeEach(func() {
			var err error
			p, err = m.Create("files")
			Expect(err).NotTo(HaveOccurred())
		})

		It("uploads, reads and deletes a text file", func() {
			f, err := m.UploadFile(p, "/tmp/notes.md", []byte("# hi"))
			Expect(err).NotTo(HaveOccurred())
			Expect(f.Filename).To(Equal("notes.md"))
			Expect(f.MimeType).To(Equal("text/markdown"))
			Expect(f.Size).To(BeEquivalentTo(4))

			text, err := m.ReadFileAsText(p.ID, f.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("# hi"))

			Expect(m.DeleteFile(p, f.ID)).To(Succeed())
			reloaded, _ := m.Load(p.ID)
			Expect(reloaded.Files).To(BeEmpty())
			_, err = m.DownloadFile(p.ID, f.ID)
			Expect(errors.Is(err, project.ErrNotFound)).To(BeTrue())
		})

		It("renders binary content as base64", func() {
			f, err := m.UploadFile(p, "blob.bin", []byte{0xff, 0xfe, 0x00})
			Expect(err).NotTo(HaveOccurred())
			Expect(f.MimeType).To(Equal("application/octet-stream"))

			text, err := m.ReadFileAsText(p.ID, f.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("[Binary file - base64 encoded: //4A]"))
		})
	})

	Describe("goals and contexts", func() {
		It("numbers entries in insertion order", func() {
			p, _ := m.Create("g")
			g1, err := m.AddGoal(p, "first")
			Expect(err).NotTo(HaveOccurred())
			g2, _ := m.AddGoal(p, "second")
			Expect(g1.Order).To(Equal(1))
			Expect(g2.Order).To(Equal(2))

			Expect(m.RemoveGoal(p, g1.ID)).To(Succeed())
			reloaded, _ := m.Load(p.ID)
			Expect(reloaded.Goals).To(HaveLen(1))
			Expect(m.RemoveGoal(p, "missing")).NotTo(Succeed())
		})

		It("rejects empty text", func() {
			p, _ := m.Create("g")
			_, err := m.AddContext(p, "")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Bundle", func() {
		It("renders goals, contexts and files", func() {
			p, _ := m.Create("b")
			m.AddGoal(p, "ship it")
			m.AddContext(p, "we use Go")
			m.UploadFile(p, "main.go", []byte("package main"))

			out, err := m.Bundle(p)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("ship it"))
			Expect(out).To(ContainSubstring("we use Go"))
			Expect(out).To(ContainSubstring("--- File: main.go ---\npackage main"))
		})
	})
})

var _ = Describe("GuessMimeType", func() {
	DescribeTable("extensions",
		func(name, want string) {
			Expect(project.GuessMimeType(name)).To(Equal(want))
		},
		Entry("rust", "lib.rs", "text/rust"),
		Entry("yaml short", "a.yml", "text/yaml"),
		Entry("upper case", "README.MD", "text/markdown"),
		Entry("unknown", "x.bin", "application/octet-stream"),
	)
})
