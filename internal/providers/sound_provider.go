package providers

import "reployer/internal/services/interfaces"

// LogSoundPlayer records requested sound events. Audio output belongs to
// the UI side, which receives the same events in every snapshot.
type LogSoundPlayer struct {
	logger  Logger
	metrics MetricsProviderInterface
}

func NewSoundProvider(logger Logger, metrics MetricsProviderInterface) interfaces.SoundPlayerInterface {
	return &LogSoundPlayer{logger: logger, metrics: metrics}
}

func (p *LogSoundPlayer) Play(event string) {
	if event == "" {
		return
	}
	p.metrics.IncEvents("sound")
	p.logger.Infof(TypeNotify, "Play sound %s", event)
}
