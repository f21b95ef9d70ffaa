package fetch

import (
	"net/url"
	"strings"
)

// Platform represents a known job board.
type Platform string

const (
	PlatformGreenhouse Platform = "greenhouse"
	PlatformLever      Platform = "lever"
	PlatformWorkday    Platform = "workday"
	PlatformAshby      Platform = "ashby"
	PlatformUnknown    Platform = "unknown"
)

type platformProfile struct {
	hosts   []string
	content []string
	noise   []string
}

var platformProfiles = map[Platform]platformProfile{
	PlatformGreenhouse: {
		hosts:   []string{"greenhouse.io"},
		content: []string{".job__description.body", ".job__description", "#content", ".job-post-container"},
		noise:   []string{".application--wrapper", ".voluntary-self-id", "#usa_self_id_section", ".post-apply"},
	},
	PlatformLever: {
		hosts:   []string{"lever.co"},
		content: []string{".posting-page", ".posting-description", ".content"},
		noise:   []string{".apply-section", ".posting-apply"},
	},
	PlatformWorkday: {
		hosts:   []string{"workday.com", "myworkdayjobs.com"},
		content: []string{"[data-automation-id='jobDescription']", ".job-description"},
		noise:   []string{"[data-automation-id='applyButton']", ".application-section"},
	},
	PlatformAshby: {
		hosts:   []string{"ashbyhq.com"},
		content: []string{"[class*='descriptionText']", "main"},
		noise:   []string{"[class*='applicationForm']"},
	},
}

// commonNoise strips application forms and legal boilerplate, which would
// otherwise leak visa and EEO wording into hidden requirement detection.
var commonNoise = []string{
	"form",
	".application-form",
	"[data-testid='application-form']",
	".eeo-statement",
	".eeo-section",
	".voluntary-disclosure",
	".self-identification",
	".social-share",
	".cookie-consent",
}

// DetectPlatform identifies the job board from a URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}
	host := strings.ToLower(parsed.Hostname())
	for platform, profile := range platformProfiles {
		for _, h := range profile.hosts {
			if host == h || strings.HasSuffix(host, "."+h) {
				return platform
			}
		}
	}
	return PlatformUnknown
}

// PlatformContentSelectors returns content selectors for a platform.
func PlatformContentSelectors(platform Platform) []string {
	if profile, ok := platformProfiles[platform]; ok {
		return append(append([]string{}, profile.content...), JobPostingSelectors()...)
	}
	return JobPostingSelectors()
}

// PlatformNoiseSelectors returns noise exclusion selectors for a platform.
func PlatformNoiseSelectors(platform Platform) []string {
	noise := append([]string{}, commonNoise...)
	if profile, ok := platformProfiles[platform]; ok {
		noise = append(noise, profile.noise...)
	}
	return noise
}
