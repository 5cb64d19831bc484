package main

import (
	"flag"
	"os"

	"github.com/juju/errors"
	"github.com/temoto/alive/v2"
	"github.com/temoto/cashreg/config"
	"github.com/temoto/cashreg/helpers/cli"
	"github.com/temoto/cashreg/log2"
	"github.com/temoto/cashreg/register"
)

var log = log2.NewStderr(log2.LInfo)

func main() {
	cmdline := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	flagConfig := cmdline.String("config", "cashreg.hcl", "")
	_ = cmdline.Parse(os.Args[1:])

	log.SetFlags(log2.LInteractiveFlags)

	conf := config.MustRead(log, config.NewOsFullReader(), *flagConfig)
	level, err := conf.LogLevel()
	if err != nil {
		log.Fatal(errors.ErrorStack(err))
	}
	log.SetLevel(level)
	initial, err := conf.Inventory()
	if err != nil {
		log.Fatal(errors.ErrorStack(err))
	}
	log.Debugf("config initial till=%s", initial)

	regLog := log.Clone(level)
	regLog.SetPrefix("register: ")
	consoleLog := log.Clone(level)
	consoleLog.SetPrefix("console: ")

	a := alive.NewAlive()
	c := newConsole(a, consoleLog, register.New(initial, regLog), os.Stdout)
	if err := cli.MainLoop(a, "cashreg", c.exec, c.complete); err != nil {
		log.Fatal(errors.ErrorStack(err))
	}
	a.Stop()
	a.Wait()
	if c.failed != 0 {
		log.Errorf("session finished with errors=%d", c.failed)
		os.Exit(1)
	}
}
