package retention_test

import (
	"os"
	"path/filepath"

	"basegraph.app/courier/internal/model"
	"basegraph.app/courier/internal/retention"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Policies", func() {
	var policies *retention.Policies

	BeforeEach(func() {
		policies = retention.DefaultPolicies()
	})

	DescribeTable("channel defaults",
		func(channel model.ChannelType, name string, days int) {
			Expect(policies.Default(channel)).To(Equal(retention.Policy{Name: name, Days: days}))
		},
		Entry("direct", model.ChannelTypeDirect, "standard", 365),
		Entry("group", model.ChannelTypeGroup, "standard", 365),
		Entry("support", model.ChannelTypeSupport, "support_extended", 1095),
		Entry("project", model.ChannelTypeProject, "project", 730),
		Entry("contract", model.ChannelTypeContract, "legal_hold", 3650),
	)

	DescribeTable("Clamp",
		func(in, want int) {
			Expect(retention.Clamp(in)).To(Equal(want))
		},
		Entry("below minimum", 7, 30),
		Entry("at minimum", 30, 30),
		Entry("inside", 400, 400),
		Entry("at maximum", 3650, 3650),
		Entry("above maximum", 10000, 3650),
	)

	It("resolves explicit values over defaults and clamps days", func() {
		Expect(policies.Resolve(model.ChannelTypeSupport, nil, nil)).
			To(Equal(retention.Policy{Name: "support_extended", Days: 1095}))
		Expect(policies.Resolve(model.ChannelTypeSupport, nil, ptr(5))).
			To(Equal(retention.Policy{Name: "support_extended", Days: 30}))
		Expect(policies.Resolve(model.ChannelTypeProject, ptr("custom"), ptr(90))).
			To(Equal(retention.Policy{Name: "custom", Days: 90}))
	})

	It("flags threads that deviate from their channel default", func() {
		Expect(policies.IsOverride(model.Thread{ChannelType: model.ChannelTypeSupport, RetentionPolicy: "support_extended", RetentionDays: 1095})).To(BeFalse())
		Expect(policies.IsOverride(model.Thread{ChannelType: model.ChannelTypeSupport, RetentionPolicy: "support_extended", RetentionDays: 30})).To(BeTrue())
		Expect(policies.IsOverride(model.Thread{ChannelType: model.ChannelTypeDirect, RetentionPolicy: "legal_hold", RetentionDays: 365})).To(BeTrue())
	})

	Describe("LoadPolicies", func() {
		It("returns defaults for an empty path", func() {
			loaded, err := retention.LoadPolicies("")
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Default(model.ChannelTypeGroup).Days).To(Equal(365))
		})

		It("overlays the file on the defaults", func() {
			path := filepath.Join(GinkgoT().TempDir(), "retention.yaml")
			Expect(os.WriteFile(path, []byte(`
channels:
  group:
    days: 90
  contract:
    policy: statutory
    days: 99999
`), 0o600)).To(Succeed())

			loaded, err := retention.LoadPolicies(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Default(model.ChannelTypeGroup)).To(Equal(retention.Policy{Name: "standard", Days: 90}))
			Expect(loaded.Default(model.ChannelTypeContract)).To(Equal(retention.Policy{Name: "statutory", Days: 3650}))
			Expect(loaded.Default(model.ChannelTypeSupport).Days).To(Equal(1095))
		})

		It("rejects unknown channel types", func() {
			path := filepath.Join(GinkgoT().TempDir(), "retention.yaml")
			Expect(os.WriteFile(path, []byte("channels:\n  broadcast:\n    days: 30\n"), 0o600)).To(Succeed())

			_, err := retention.LoadPolicies(path)
			Expect(err).To(MatchError(ContainSubstring(`unknown channel type "broadcast"`)))
		})
	})
})
