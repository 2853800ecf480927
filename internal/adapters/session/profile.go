package session

// Profile is the browser identity a session presents.
type Profile struct {
	UserAgents []string
	Origin     string
	SecCHUA    string
	Platform   string
}

// DefaultProfile looks like desktop Edge on Windows talking to blinkit.com.
func DefaultProfile() Profile {
	return Profile{
		UserAgents: []string{
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36 Edg/119.0.0.0",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.0.0 Safari/537.36 Edg/118.0.0.0",
		},
		Origin:   "https://blinkit.com",
		SecCHUA:  `"Not_A Brand";v="8", "Chromium";v="120", "Microsoft Edge";v="120"`,
		Platform: `"Windows"`,
	}
}

func (p Profile) withDefaults() Profile {
	def := DefaultProfile()
	if len(p.UserAgents) == 0 {
		p.UserAgents = def.UserAgents
	}
	if p.Origin == "" {
		p.Origin = def.Origin
	}
	if p.SecCHUA == "" {
		p.SecCHUA = def.SecCHUA
	}
	if p.Platform == "" {
		p.Platform = def.Platform
	}
	return p
}
