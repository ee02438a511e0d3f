package main

import (
	"net"
	"strings"

	"nandsim"
	"nandsim/shell"

	"github.com/pkg/browser"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

func (a *app) newServeCmd() *cobra.Command {
	var listen string
	var open bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interactive slider page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("listen") {
				a.cfg.Server.Listen = listen
			}
			if cmd.Flags().Changed("open") {
				a.cfg.Server.Open = open
			}

			session := shell.NewSession(nandsim.Simulate, a.log)
			atexit.Register(session.Close)
			// 预先计算初始参数，/api/last 立即可用
			if _, err := session.OnParametersChanged(a.params); err != nil {
				return err
			}

			listener, err := net.Listen("tcp", a.cfg.Server.Listen)
			if err != nil {
				return errors.Wrapf(err, "listen %s", a.cfg.Server.Listen)
			}
			url := "http://" + browseAddr(listener.Addr()) + "/?variant=" + a.params.Variant.String()
			if a.cfg.Server.Open {
				if err := browser.OpenURL(url); err != nil {
					a.log.Warn("open browser", "url", url, "err", err)
				}
			}
			srv := shell.NewServer(session, a.plot(), a.log)
			return srv.Serve(listener)
		},
	}
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&open, "open", false, "open the page in a browser")
	return cmd
}

// browseAddr 监听全部地址时改用 localhost
func browseAddr(addr net.Addr) string {
	s := addr.String()
	if strings.HasPrefix(s, "[::]:") || strings.HasPrefix(s, "0.0.0.0:") {
		return "localhost" + s[strings.LastIndex(s, ":"):]
	}
	return s
}
