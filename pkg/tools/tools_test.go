package tools

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ByName and Names", func() {
	ts := []Tool{NewListFiles(), NewReadFile(), NewShell()}

	It("finds a tool by its name", func() {
		Expect(ByName(ts, "read_file")).To(Equal(ts[1]))
	})

	It("returns nil for an unknown name", func() {
		Expect(ByName(ts, "launch_rockets")).To(BeNil())
	})

	It("lists names in registration order", func() {
		Expect(Names(ts)).To(Equal([]string{"list_files", "read_file", "run_shell_command"}))
	})
})

var _ = Describe("ReadFile", func() {
	var (
		ctx context.Context
		t   *ReadFile
		dir string
	)

	BeforeEach(func() {
		ctx = context.Background()
		t = NewReadFile()
		dir = GinkgoT().TempDir()
	})

	It("returns the file content", func() {
		path := filepath.Join(dir, "hello.txt")
		Expect(os.WriteFile(path, []byte("hello world"), 0o644)).To(Succeed())

		out, err := t.Run(ctx, path)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("hello world"))
	})

	It("reports a missing file as output, not as an error", func() {
		out, err := t.Run(ctx, filepath.Join(dir, "absent.txt"))
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("not found"))
	})

	It("rejects an empty path", func() {
		out, err := t.Run(ctx, "   ")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("requires a file path"))
	})

	It("truncates oversized files", func() {
		path := filepath.Join(dir, "big.txt")
		Expect(os.WriteFile(path, []byte(strings.Repeat("x", maxReadSize+100)), 0o644)).To(Succeed())

		out, err := t.Run(ctx, path)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(HaveSuffix("... (truncated)"))
		Expect(len(out)).To(BeNumerically("<", maxReadSize+100))
	})
})

var _ = Describe("Shell", func() {
	var (
		ctx context.Context
		t   *Shell
	)

	BeforeEach(func() {
		ctx = context.Background()
		t = NewShell()
	})

	It("wraps stdout with the STDOUT marker", func() {
		out, err := t.Run(ctx, "echo hello")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("STDOUT: hello"))
	})

	It("includes stderr when the command writes to it", func() {
		out, err := t.Run(ctx, "echo oops 1>&2")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("STDERR: oops"))
	})

	It("reports a failing command as output, not as an error", func() {
		out, err := t.Run(ctx, "exit 3")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Error executing command"))
	})
})

var _ = Describe("ListFiles", func() {
	var (
		ctx context.Context
		t   *ListFiles
		dir string
	)

	mkfile := func(rel string) {
		path := filepath.Join(dir, rel)
		Expect(os.MkdirAll(filepath.Dir(path), 0o755)).To(Succeed())
		Expect(os.WriteFile(path, []byte("x"), 0o644)).To(Succeed())
	}

	BeforeEach(func() {
		ctx = context.Background()
		t = NewListFiles()
		dir = GinkgoT().TempDir()
	})

	It("lists files recursively", func() {
		mkfile("a.go")
		mkfile("sub/b.go")

		out, err := t.Run(ctx, dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("a.go"))
		Expect(out).To(ContainSubstring(filepath.Join("sub", "b.go")))
	})

	It("skips the .git directory", func() {
		mkfile("a.go")
		mkfile(".git/config")

		out, err := t.Run(ctx, dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).NotTo(ContainSubstring(".git"))
	})

	It("honors top-level gitignore patterns", func() {
		mkfile("keep.go")
		mkfile("skip.log")
		mkfile("build/out.bin")
		Expect(os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("*.log\nbuild/\n"), 0o644)).To(Succeed())

		out, err := t.Run(ctx, dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("keep.go"))
		Expect(out).NotTo(ContainSubstring("skip.log"))
		Expect(out).NotTo(ContainSubstring("out.bin"))
	})

	It("reports a missing directory as output, not as an error", func() {
		out, err := t.Run(ctx, filepath.Join(dir, "absent"))
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("not found"))
	})

	It("reports an empty directory", func() {
		out, err := t.Run(ctx, dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("is empty"))
	})
})
