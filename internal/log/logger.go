package log

import (
	"github.com/sirupsen/logrus"
)

type LogModule string

const (
	DBModule         LogModule = "db"
	RepoModule       LogModule = "repo"
	AuthModule       LogModule = "auth"
	ArtifactModule   LogModule = "artifact"
	TlgModule        LogModule = "tlg"
	HealthModule     LogModule = "health"
	BalancerModule   LogModule = "balancer"
	PipelineModule   LogModule = "pipeline"
	ForwardModule    LogModule = "forward"
	BotModule        LogModule = "bot"
	WebModule        LogModule = "web"
	AnalyticsModule  LogModule = "analytics"
)

func GetLogger(module LogModule) *logrus.Entry {
	return logrus.WithField("module", module)
}

func Setup(level string) {
	ll, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.WithError(err).Errorf("can not parse log level %s. using default ...", level)
		return
	}
	logrus.Infof("setting log level to %s", ll)
	logrus.SetLevel(ll)
}
