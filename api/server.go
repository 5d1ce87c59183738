package api

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/IronCretin/bytepole2/vm"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// defaultRunLimit keeps one request from wedging the server on a program
// that never halts.
const defaultRunLimit = 1 << 16

type ServerConfig struct {
	ListenerAddr string
	// RunLimit is the most instructions one request may execute.
	RunLimit int
	Logger   *zap.Logger
}

type Server struct {
	ServerConfig

	logger *zap.Logger
}

func NewServer(config ServerConfig) (*Server, error) {
	if config.Logger == nil {
		config.Logger, _ = zap.NewDevelopment()
	}
	if config.RunLimit <= 0 {
		config.RunLimit = defaultRunLimit
	}
	s := &Server{
		ServerConfig: config,
		logger:       config.Logger.Named("api"),
	}
	return s, nil
}

func (s *Server) Start() error {
	s.logger.Info("api server starting",
		zap.String("addr", s.ListenerAddr))
	echoer := echo.New()
	echoer.HideBanner = true

	echoer.POST("/run", s.handleRun)
	echoer.POST("/dump", s.handleDump)

	return echoer.Start(s.ListenerAddr)
}

type runRequest struct {
	Program string `json:"program"`
	Stdin   string `json:"stdin"`
	// Steps is only read by /dump: how many instructions to execute
	// before rendering. Zero renders the freshly loaded image.
	Steps int `json:"steps"`
}

// newMachine builds one machine per request; requests never share state.
func (s *Server) newMachine(req runRequest, out *bytes.Buffer) *vm.Machine {
	return vm.NewMachine([]byte(req.Program),
		vm.ConsoleOpt(vm.NewStreamConsole(strings.NewReader(req.Stdin), out)),
		vm.MaxStepsOpt(s.RunLimit),
		vm.LoggerOpt(s.logger),
	)
}

func (s *Server) handleRun(ectx echo.Context) error {
	var req runRequest
	if err := ectx.Bind(&req); err != nil {
		return ectx.JSON(http.StatusBadRequest,
			map[string]any{
				"error": err.Error(),
			})
	}

	out := &bytes.Buffer{}
	m := s.newMachine(req, out)

	halted, err := m.Run()
	if err != nil {
		return ectx.JSON(http.StatusUnprocessableEntity,
			map[string]any{
				"error":  err.Error(),
				"output": out.String(),
			})
	}

	return ectx.JSON(http.StatusOK,
		map[string]any{
			"output": out.String(),
			"steps":  m.Steps(),
			"halted": halted,
		})
}

func (s *Server) handleDump(ectx echo.Context) error {
	var req runRequest
	if err := ectx.Bind(&req); err != nil {
		return ectx.JSON(http.StatusBadRequest,
			map[string]any{
				"error": err.Error(),
			})
	}

	steps := req.Steps
	if steps > s.RunLimit {
		steps = s.RunLimit
	}

	out := &bytes.Buffer{}
	m := s.newMachine(req, out)

	for i := 0; i < steps; i++ {
		halted, err := m.Step()
		if err != nil {
			return ectx.JSON(http.StatusUnprocessableEntity,
				map[string]any{
					"error":  err.Error(),
					"output": out.String(),
				})
		}
		if halted {
			break
		}
	}

	return ectx.String(http.StatusOK, m.Dump())
}
