package config

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Config loading", func() {
	var dir string

	writeConfig := func(content string) {
		path := filepath.Join(dir, "chainstream.toml")
		Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("resolves to defaults when no config file exists", func() {
		v, err := InitViper(dir)
		Expect(err).NotTo(HaveOccurred())

		cfg, err := FromViper(v)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg).To(Equal(NewDefaultConfig()))
	})

	It("applies config file values over defaults", func() {
		writeConfig(`
[server]
listen = ":9999"

[llm]
model = "llama3:70b"

[agent]
max_iterations = 4

[event_stream]
provider = "kafka"
brokers = ["localhost:9092"]
topic = "agent.sessions"
`)

		v, err := InitViper(dir)
		Expect(err).NotTo(HaveOccurred())

		cfg, err := FromViper(v)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Server.Listen).To(Equal(":9999"))
		Expect(cfg.LLM.Model).To(Equal("llama3:70b"))
		Expect(cfg.Agent.MaxIterations).To(Equal(4))
		Expect(cfg.EventStream.Provider).To(Equal("kafka"))
		Expect(cfg.EventStream.Brokers).To(Equal([]string{"localhost:9092"}))
		Expect(cfg.EventStream.Topic).To(Equal("agent.sessions"))

		// Untouched sections keep their defaults.
		Expect(cfg.Client.Target).To(Equal(NewDefaultConfig().Client.Target))
	})

	It("lets environment variables override the config file", func() {
		writeConfig(`
[server]
listen = ":9999"
`)
		GinkgoT().Setenv("CHAINSTREAM_SERVER_LISTEN", ":7777")

		v, err := InitViper(dir)
		Expect(err).NotTo(HaveOccurred())

		cfg, err := FromViper(v)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Server.Listen).To(Equal(":7777"))
	})

	It("reads nested keys from the environment", func() {
		GinkgoT().Setenv("CHAINSTREAM_VECTOR_STORE_SQLITE_PATH", "/tmp/index.db")

		v, err := InitViper(dir)
		Expect(err).NotTo(HaveOccurred())

		cfg, err := FromViper(v)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.VectorStore.SQLitePath).To(Equal("/tmp/index.db"))
	})

	It("rejects an unsupported schema version", func() {
		writeConfig("version = 99\n")

		v, err := InitViper(dir)
		Expect(err).NotTo(HaveOccurred())

		_, err = FromViper(v)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("unsupported config version 99"))
	})

	It("rejects a malformed config file", func() {
		writeConfig("this is not toml [[[")

		_, err := InitViper(dir)
		Expect(err).To(HaveOccurred())
	})
})
