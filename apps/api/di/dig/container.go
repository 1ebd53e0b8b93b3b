package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/peereval/apps/api/echo"
	"github.com/trezcool/peereval/core"
	"github.com/trezcool/peereval/core/auth"
	"github.com/trezcool/peereval/core/evaluation"
	"github.com/trezcool/peereval/core/roster"
	emailsvc "github.com/trezcool/peereval/services/email"
	logsvc "github.com/trezcool/peereval/services/logger"
	"github.com/trezcool/peereval/storage"
)

type StoreLoggerParam struct {
	dig.In
	Logger core.Logger `name:"storeLogger"`
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newStoreLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "STORE : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

// newRoster loads the roster once at startup: the app cannot run without it.
func newRoster(conf *core.Config, logger core.Logger) *roster.Directory {
	dir, err := roster.Load(conf.Roster.Path, conf.Auth.Mode == core.AuthModeCode)
	if err != nil {
		logger.Fatal(fmt.Sprintf("loading roster: %v", err), err)
	}
	return dir
}

func newBackend(conf *core.Config, loggerParam StoreLoggerParam) (evaluation.Backend, storage.Closer) {
	backend, closer, err := storage.Open(context.Background(), conf)
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("opening store: %v", err), err)
	}
	return backend, closer
}

func newStore(backend evaluation.Backend, loggerParam StoreLoggerParam) *evaluation.Store {
	return evaluation.NewStore(backend, loggerParam.Logger)
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, log.New(os.Stdout, "EMAIL : ", log.LstdFlags))
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	evaluation.InitValidators(validate, translator)
	return validate
}

func newSessionStore(conf *core.Config) *auth.SessionStore {
	return auth.NewSessionStore(conf.Auth.SessionTimeout)
}

func newDeps(
	authSvc *auth.Service,
	evalSvc *evaluation.Service,
	validate *validator.Validate,
	translator ut.Translator,
) *echoapi.Deps {
	return &echoapi.Deps{AuthSvc: authSvc, EvalSvc: evalSvc, Validate: validate, Translator: translator}
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newStoreLogger, dig.Name("storeLogger")))
	must(c.Provide(newRoster))
	must(c.Provide(newBackend))
	must(c.Provide(newStore))
	must(c.Provide(newEmailService))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(newSessionStore))
	must(c.Provide(auth.NewService))
	must(c.Provide(evaluation.NewService))
	must(c.Provide(newDeps))
	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
