package tables

// DefaultCPM applies when the niche is not in the niche table.
const DefaultCPM = 15.0

// DefaultVersion identifies the built-in table set.
const DefaultVersion = "builtin-2024.1"

// Default returns a fresh copy of the built-in reference tables.
func Default() *Tables { //nolint:funlen // data
	return &Tables{
		Version: DefaultVersion,
		Niches: Niches{
			DefaultCPM: DefaultCPM,
			Entries: map[string]Niche{
				"finance":       {Label: "Finance & Investing", CPM: 35},
				"crypto":        {Label: "Crypto & Web3", CPM: 32},
				"business":      {Label: "Business & Entrepreneurship", CPM: 30},
				"technology":    {Label: "Technology", CPM: 27},
				"software":      {Label: "Software & SaaS", CPM: 29},
				"automotive":    {Label: "Automotive", CPM: 24},
				"education":     {Label: "Education", CPM: 22},
				"health":        {Label: "Health & Fitness", CPM: 20},
				"parenting":     {Label: "Parenting & Family", CPM: 19},
				"beauty":        {Label: "Beauty & Skincare", CPM: 18},
				"travel":        {Label: "Travel", CPM: 17},
				"fashion":       {Label: "Fashion", CPM: 16},
				"lifestyle":     {Label: "Lifestyle & Vlogs", CPM: 15},
				"food":          {Label: "Food & Cooking", CPM: 14},
				"sports":        {Label: "Sports", CPM: 13},
				"gaming":        {Label: "Gaming", CPM: 12},
				"entertainment": {Label: "Entertainment", CPM: 10},
				"music":         {Label: "Music", CPM: 9},
				"comedy":        {Label: "Comedy", CPM: 8},
			},
		},
		AudienceSize: Brackets{
			{UpperBound: 10_000, Multiplier: 1.15, Label: "Nano (<10K)"},
			{UpperBound: 100_000, Multiplier: 1.0, Label: "Micro (10K-100K)"},
			{UpperBound: 500_000, Multiplier: 0.95, Label: "Mid-tier (100K-500K)"},
			{UpperBound: 1_000_000, Multiplier: 0.9, Label: "Macro (500K-1M)"},
			{UpperBound: Unbounded, Multiplier: 0.85, Label: "Mega (1M+)"},
		},
		Engagement: Brackets{
			{UpperBound: 1, Multiplier: 0.7, Label: "Low (<1%)"},
			{UpperBound: 3, Multiplier: 1.0, Label: "Average (1-3%)"},
			{UpperBound: 5, Multiplier: 1.15, Label: "Good (3-5%)"},
			{UpperBound: 8, Multiplier: 1.3, Label: "High (5-8%)"},
			{UpperBound: Unbounded, Multiplier: 1.5, Label: "Exceptional (8%+)"},
		},
		ContentTypes: Lookup{
			Fallback: Neutral(),
			Entries: map[string]Entry{
				"dedicated":         {Label: "Dedicated video", Multiplier: 1.5},
				"integrated":        {Label: "Integrated segment (60-90s)", Multiplier: 1.0},
				"mention":           {Label: "Brief mention (15-30s)", Multiplier: 0.6},
				"product_placement": {Label: "Product placement", Multiplier: 0.8},
				"short":             {Label: "Short-form clip", Multiplier: 0.7},
				"story":             {Label: "Story / ephemeral post", Multiplier: 0.5},
				"review":            {Label: "Product review", Multiplier: 1.3},
				"tutorial":          {Label: "Tutorial / how-to", Multiplier: 1.2},
			},
		},
		LivestreamContent: Lookup{
			Fallback: Neutral(),
			Entries: map[string]Entry{
				"dedicated_stream": {Label: "Dedicated sponsored stream", Multiplier: 1.4},
				"segment":          {Label: "Sponsored segment", Multiplier: 1.0},
				"overlay":          {Label: "Branded overlay", Multiplier: 0.5},
				"chat_command":     {Label: "Chat command / bot", Multiplier: 0.3},
				"giveaway":         {Label: "Sponsored giveaway", Multiplier: 0.8},
			},
		},
		CompanySizes: Lookup{
			Fallback: Neutral(),
			Entries: map[string]Entry{
				"startup":    {Label: "Startup", Multiplier: 0.8},
				"small":      {Label: "Small business", Multiplier: 0.9},
				"medium":     {Label: "Mid-size company", Multiplier: 1.0},
				"large":      {Label: "Large company", Multiplier: 1.2},
				"enterprise": {Label: "Enterprise", Multiplier: 1.4},
			},
		},
		AudienceLocations: Lookup{
			Fallback: Neutral(),
			Entries: map[string]Entry{
				"us":     {Label: "United States", Multiplier: 1.0},
				"ca":     {Label: "Canada", Multiplier: 0.95},
				"uk":     {Label: "United Kingdom", Multiplier: 0.95},
				"au":     {Label: "Australia", Multiplier: 0.9},
				"eu":     {Label: "Europe", Multiplier: 0.85},
				"global": {Label: "Global mix", Multiplier: 0.8},
				"asia":   {Label: "Asia", Multiplier: 0.6},
				"latam":  {Label: "Latin America", Multiplier: 0.5},
				"india":  {Label: "India", Multiplier: 0.4},
				"africa": {Label: "Africa", Multiplier: 0.4},
			},
		},
		Platforms: Platforms{
			Fallback: Platform{Label: FallbackLabel, Multiplier: 1.0, Kind: KindVideo},
			Entries: map[string]Platform{
				"youtube":         {Label: "YouTube", Multiplier: 1.0, Kind: KindVideo},
				"youtube_shorts":  {Label: "YouTube Shorts", Multiplier: 0.7, Kind: KindShortForm},
				"tiktok":          {Label: "TikTok", Multiplier: 0.8, Kind: KindShortForm},
				"instagram":       {Label: "Instagram", Multiplier: 0.9, Kind: KindShortForm},
				"instagram_reels": {Label: "Instagram Reels", Multiplier: 0.85, Kind: KindShortForm},
				"twitch":          {Label: "Twitch", Multiplier: 0.9, Kind: KindLivestream},
				"kick":            {Label: "Kick", Multiplier: 0.8, Kind: KindLivestream},
				"podcast":         {Label: "Podcast", Multiplier: 1.1, Kind: KindAudio},
				"linkedin":        {Label: "LinkedIn", Multiplier: 1.2, Kind: KindShortForm},
				"x":               {Label: "X (Twitter)", Multiplier: 0.6, Kind: KindShortForm},
			},
		},
		CampaignTypes: Lookup{
			Fallback: Neutral(),
			Entries: map[string]Entry{
				"single":      {Label: "Single deliverable", Multiplier: 1.0},
				"series":      {Label: "Multi-post series", Multiplier: 0.9},
				"launch":      {Label: "Product launch", Multiplier: 1.2},
				"ambassador":  {Label: "Brand ambassador", Multiplier: 0.85},
				"affiliate":   {Label: "Affiliate hybrid", Multiplier: 0.7},
				"event":       {Label: "Event coverage", Multiplier: 1.1},
				"seasonal":    {Label: "Seasonal push", Multiplier: 1.15},
				"awareness":   {Label: "Brand awareness", Multiplier: 1.0},
				"performance": {Label: "Performance / conversion", Multiplier: 0.9},
			},
		},
		PartnershipDuration: Lookup{
			Fallback: Neutral(),
			Entries: map[string]Entry{
				"one_off":   {Label: "One-off", Multiplier: 1.0},
				"monthly":   {Label: "Monthly retainer", Multiplier: 0.95},
				"quarterly": {Label: "Quarterly", Multiplier: 0.9},
				"annual":    {Label: "Annual", Multiplier: 0.85},
			},
		},
		Exclusivity: Lookup{
			Fallback: Neutral(),
			Entries: map[string]Entry{
				"none":         {Label: "No exclusivity", Multiplier: 1.0},
				"category_30d": {Label: "Category exclusive (30 days)", Multiplier: 1.15},
				"category_90d": {Label: "Category exclusive (90 days)", Multiplier: 1.3},
				"full":         {Label: "Full exclusivity", Multiplier: 1.5},
			},
		},
		UsageRights: Lookup{
			Fallback: Neutral(),
			Entries: map[string]Entry{
				"none":           {Label: "Creator channels only", Multiplier: 1.0},
				"organic_social": {Label: "Brand organic social", Multiplier: 1.1},
				"paid_ads_30d":   {Label: "Paid ads (30 days)", Multiplier: 1.25},
				"paid_ads_90d":   {Label: "Paid ads (90 days)", Multiplier: 1.4},
				"perpetual":      {Label: "Perpetual license", Multiplier: 1.75},
			},
		},
		Verdicts: VerdictThresholds{TooLow: 0.50, Acceptable: 0.75, Good: 0.95},
	}
}
