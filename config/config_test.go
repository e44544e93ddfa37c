package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/service-a/config"
)

var envKeys = []string{
	"CLUSTER_NAME",
	"POD_NAME",
	"SERVICE_B_URL",
	"SERVICE_B_TIMEOUT",
	"SERVICE_B_BREAKER_THRESHOLD",
	"SERVER_ADDRESS",
	"LOGGING_LEVEL",
}

var _ = Describe("Config", func() {
	var (
		tempDir string
		origDir string
	)

	BeforeEach(func() {
		var err error
		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		tempDir, err = os.MkdirTemp("", "config-test-*")
		Expect(err).NotTo(HaveOccurred())

		Expect(os.Chdir(tempDir)).To(Succeed())
	})

	AfterEach(func() {
		Expect(os.Chdir(origDir)).To(Succeed())
		os.RemoveAll(tempDir)
		for _, key := range envKeys {
			os.Unsetenv(key)
		}
	})

	Describe("Load", func() {
		Context("with no config file and no environment", func() {
			It("should fall back to the defaults", func() {
				cfg, err := config.Load("")
				Expect(err).NotTo(HaveOccurred())

				Expect(cfg.Cluster.Name).To(Equal("unknown-cluster"))
				Expect(cfg.Pod.Name).To(Equal("unknown-pod"))
				Expect(cfg.ServiceB.URL).To(Equal("http://consumer:8000/"))
				Expect(cfg.Server.Address).To(Equal(":8000"))
				Expect(cfg.Logging.Level).To(Equal("info"))
			})

			It("should leave the peer call unbounded", func() {
				cfg, err := config.Load("")
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.PeerTimeout()).To(BeZero())
				Expect(cfg.ServiceB.BreakerThreshold).To(BeZero())
				Expect(cfg.BreakerReset()).To(Equal(30 * time.Second))
			})
		})

		Context("with environment variables", func() {
			BeforeEach(func() {
				os.Setenv("CLUSTER_NAME", "gke-east")
				os.Setenv("POD_NAME", "service-a-7d9f")
				os.Setenv("SERVICE_B_URL", "http://service-b.default.svc:8080/")
				os.Setenv("SERVICE_B_TIMEOUT", "2s")
				os.Setenv("SERVICE_B_BREAKER_THRESHOLD", "5")
			})

			It("should read the identity and peer settings", func() {
				cfg, err := config.Load("")
				Expect(err).NotTo(HaveOccurred())

				Expect(cfg.Cluster.Name).To(Equal("gke-east"))
				Expect(cfg.Pod.Name).To(Equal("service-a-7d9f"))
				Expect(cfg.ServiceB.URL).To(Equal("http://service-b.default.svc:8080/"))
				Expect(cfg.PeerTimeout()).To(Equal(2 * time.Second))
				Expect(cfg.ServiceB.BreakerThreshold).To(Equal(5))
			})
		})

		Context("with empty environment variables", func() {
			BeforeEach(func() {
				os.Setenv("CLUSTER_NAME", "")
				os.Setenv("POD_NAME", "")
				os.Setenv("SERVICE_B_URL", "")
			})

			It("should treat them as unset and keep the defaults", func() {
				cfg, err := config.Load("")
				Expect(err).NotTo(HaveOccurred())

				Expect(cfg.Cluster.Name).To(Equal("unknown-cluster"))
				Expect(cfg.Pod.Name).To(Equal("unknown-pod"))
				Expect(cfg.ServiceB.URL).To(Equal("http://consumer:8000/"))
			})
		})

		Context("with valid config file", func() {
			BeforeEach(func() {
				configContent := `
server:
  address: ":9090"

cluster:
  name: "from-file"

service_b:
  url: "https://b.example.com/api"
  timeout: "5s"

logging:
  level: "debug"
`
				err := os.WriteFile(filepath.Join(tempDir, "config.yaml"), []byte(configContent), 0644)
				Expect(err).NotTo(HaveOccurred())
			})

			It("should load configuration successfully", func() {
				cfg, err := config.Load("")
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Server.Address).To(Equal(":9090"))
				Expect(cfg.Cluster.Name).To(Equal("from-file"))
				Expect(cfg.ServiceB.URL).To(Equal("https://b.example.com/api"))
				Expect(cfg.Logging.Level).To(Equal("debug"))
			})

			It("should keep defaults for keys the file omits", func() {
				cfg, err := config.Load("")
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Pod.Name).To(Equal("unknown-pod"))
			})

			It("should let the environment override the file", func() {
				os.Setenv("CLUSTER_NAME", "from-env")

				cfg, err := config.Load("")
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Cluster.Name).To(Equal("from-env"))
			})
		})

		Context("with an explicit config path", func() {
			It("should read the given file", func() {
				path := filepath.Join(tempDir, "custom.yaml")
				Expect(os.WriteFile(path, []byte("pod:\n  name: \"custom-pod\"\n"), 0644)).To(Succeed())

				cfg, err := config.Load(path)
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Pod.Name).To(Equal("custom-pod"))
			})

			It("should fail when the file does not exist", func() {
				cfg, err := config.Load(filepath.Join(tempDir, "missing.yaml"))
				Expect(err).To(HaveOccurred())
				Expect(cfg).To(BeNil())
			})
		})

		Context("with invalid values", func() {
			It("should reject a peer URL without http scheme", func() {
				os.Setenv("SERVICE_B_URL", "ftp://consumer:8000/")

				cfg, err := config.Load("")
				Expect(err).To(HaveOccurred())
				Expect(cfg).To(BeNil())
			})

			It("should refuse to start with an unparsable peer URL", func() {
				os.Setenv("SERVICE_B_URL", "http://[::1")

				cfg, err := config.Load("")
				Expect(err).To(HaveOccurred())
				Expect(cfg).To(BeNil())
			})

			It("should reject a peer URL without host", func() {
				os.Setenv("SERVICE_B_URL", "http:///path")

				_, err := config.Load("")
				Expect(err).To(HaveOccurred())
			})

			It("should reject an unparsable timeout", func() {
				os.Setenv("SERVICE_B_TIMEOUT", "soon")

				_, err := config.Load("")
				Expect(err).To(HaveOccurred())
			})

			It("should reject a negative breaker threshold", func() {
				os.Setenv("SERVICE_B_BREAKER_THRESHOLD", "-1")

				_, err := config.Load("")
				Expect(err).To(HaveOccurred())
			})

			It("should reject an address without port", func() {
				os.Setenv("SERVER_ADDRESS", "localhost")

				_, err := config.Load("")
				Expect(err).To(HaveOccurred())
			})

			It("should reject an unknown log level", func() {
				os.Setenv("LOGGING_LEVEL", "verbose")

				_, err := config.Load("")
				Expect(err).To(HaveOccurred())
			})
		})
	})

	Describe("Validate", func() {
		var cfg *config.Config

		BeforeEach(func() {
			cfg = &config.Config{
				Server:   config.ServerConfig{Address: ":8000"},
				Cluster:  config.ClusterConfig{Name: "c"},
				Pod:      config.PodConfig{Name: "p"},
				ServiceB: config.PeerConfig{URL: "http://consumer:8000/", Timeout: "0s", BreakerReset: "30s"},
				Logging:  config.LoggingConfig{Level: "info"},
			}
		})

		It("should accept a complete configuration", func() {
			Expect(cfg.Validate()).To(Succeed())
		})

		It("should reject an empty cluster name", func() {
			cfg.Cluster.Name = ""
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject an empty pod name", func() {
			cfg.Pod.Name = ""
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject a listen address with a bad host", func() {
			cfg.Server.Address = "bad_host!:8000"
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject a negative timeout", func() {
			cfg.ServiceB.Timeout = "-1s"
			Expect(cfg.Validate()).NotTo(Succeed())
		})
	})
})
