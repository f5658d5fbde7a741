package main

import (
	"context"
	"log"
	"os"
	"sync"

	"github.com/fixkme/evloop/app"
	"github.com/fixkme/evloop/clock"
	"github.com/fixkme/evloop/config"
	"github.com/fixkme/evloop/gate"
	"github.com/fixkme/evloop/mlog"
	utime "github.com/fixkme/evloop/util/time"
	"github.com/panjf2000/gnet/v2"
	"github.com/urfave/cli"
)

func main() {
	cliApp := cli.NewApp()
	cliApp.Name = "evloop"
	cliApp.Usage = "echo gate with clock driven idle timeouts"
	cliApp.Flags = []cli.Flag{
		cli.StringFlag{Name: "config, c", Usage: "config file path"},
		cli.StringFlag{Name: "addr, a", Usage: "listen address, overrides config"},
	}
	cliApp.Action = serve
	if err := cliApp.Run(os.Args); err != nil {
		log.Fatalf("evloop exited with error: %v", err)
	}
}

func serve(ctx *cli.Context) error {
	if err := config.LoadConfig(ctx.String("config"), nil); err != nil {
		return err
	}
	conf := config.Config
	if addr := ctx.String("addr"); addr != "" {
		conf.GateAddr = addr
	}
	utime.SetTimezone(conf.TimezoneOffset)

	logCtx, logCancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	if conf.LogPath != "" {
		if err := mlog.UseDefaultLogger(logCtx, wg, conf.LogPath, conf.LogName, mlog.Level(conf.LogLevel), conf.LogStdOut); err != nil {
			logCancel()
			return err
		}
	} else {
		mlog.UseStdLogger(mlog.Level(conf.LogLevel))
	}
	defer func() {
		logCancel()
		wg.Wait()
	}()
	mlog.Infof("config: %s", conf.JsonFormat())

	quit := make(chan struct{})
	clock.Start(quit)
	srv := gate.NewServer(&gate.ServerOptions{
		Options:       gnet.Options{Multicore: conf.GateMulticore},
		Addr:          conf.GateAddr,
		IdleTimeoutMs: conf.IdleTimeoutMs,
		Clock:         clock.Default(),
	})
	app.DefaultApp().Run(&gateModule{srv: srv, quit: quit})
	return nil
}

type gateModule struct {
	srv  *gate.Server
	quit chan struct{}
}

func (m *gateModule) Name() string { return "gate" }

func (m *gateModule) OnInit() error { return nil }

func (m *gateModule) Run() {
	if err := m.srv.Run(); err != nil {
		mlog.Errorf("gate run error: %v", err)
	}
}

func (m *gateModule) Destroy() {
	m.srv.Shutdown()
	close(m.quit)
}
