package jobid

import "creatorpack/internal/config"

// ParamsFromConfig collects every policy value that participates in the
// fingerprint from the resolved configuration.
func ParamsFromConfig(cfg *config.Config) Params {
	if cfg == nil {
		return Params{}
	}
	return Params{
		Template:   cfg.Output.Template,
		Minutes:    cfg.Chapters.TargetMinutes,
		Smart:      cfg.Chapters.AllowSmart,
		Highlights: cfg.Highlights.Enabled,
		Highlight:  cfg.HighlightPolicy(),
		BrandPath:  cfg.Output.BrandPath,
		Diarize:    cfg.Transcription.Diarize,
		Localize:   cfg.Output.Localize,
	}
}
