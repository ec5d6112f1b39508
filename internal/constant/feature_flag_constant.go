package constant

// PredefinedFlag describes a built-in feature flag. Initialization
// creates missing flags disabled and refreshes drifted descriptions,
// never touching the enabled state of existing rows.
type PredefinedFlag struct {
	Name        string
	Description string
}

var PredefinedFeatureFlags = []PredefinedFlag{
	{
		Name:        "Spiritual Parenting",
		Description: "Enable parenting-focused spiritual guidance and family-oriented advice for raising children with spiritual values.",
	},
	{
		Name:        "Grief Support",
		Description: "Enable grief counseling and loss support features to help users through difficult times with spiritual comfort.",
	},
	{
		Name:        "Meditation Guidance",
		Description: "Enable meditation techniques and mindfulness practices to help users develop spiritual awareness and inner peace.",
	},
	{
		Name:        "Scripture Study",
		Description: "Enable in-depth scripture analysis and biblical interpretation for deeper understanding of religious texts.",
	},
	{
		Name:        "Prayer Requests",
		Description: "Enable prayer request features and spiritual intercession support for community prayer needs.",
	},
	{
		Name:        "Community Features",
		Description: "Enable group discussions and community sharing features for spiritual fellowship.",
	},
}
