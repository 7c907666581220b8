// Command ipsock parses and formats IP addresses and runs UDP/TCP echo
// servers and clients on top of the socket package.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/digineo/ipsockets/ifconfig"
	"github.com/digineo/ipsockets/ip"
	"github.com/digineo/ipsockets/socket"
)

// errUsage marks missing or surplus command line arguments.
var errUsage = errors.New("usage error")

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := createApp().Run(ctx, os.Args)
	if err == nil {
		return 0
	}
	code := exitCode(err)
	if _, ok := err.(cli.ExitCoder); !ok {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	return code
}

// exitCode is 2 for malformed input and usage errors, 1 for everything else.
func exitCode(err error) int {
	var exitErr cli.ExitCoder
	switch {
	case errors.As(err, &exitErr):
		return exitErr.ExitCode()
	case errors.Is(err, ip.ErrMalformedInput), errors.Is(err, errUsage):
		return 2
	}
	return 1
}

func createApp() *cli.Command {
	return &cli.Command{
		Name:  "ipsock",
		Usage: "IP address codec and socket toolbox",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:    "timeout",
				Aliases: []string{"t"},
				Usage:   "receive and resolve timeout",
				Value:   socket.DefaultOptions.Timeout,
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "socket log level (debug, info, error, none)",
				Value:   socket.DefaultOptions.LogLevel.String(),
			},
		},
		Commands: []*cli.Command{
			createIPv4Command(),
			createIPv6Command(),
			createAddrCommand(),
			createMaskCommand(),
			createResolveCommand(),
			createIfaddrsCommand(),
			createServeCommand(),
			createSendCommand(),
		},
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(os.Stderr, err)
			}
		},
	}
}

// oneArg returns the single positional argument of cmd.
func oneArg(cmd *cli.Command) (string, error) {
	if cmd.Args().Len() != 1 {
		return "", errors.Wrapf(errUsage, "%s expects exactly one argument: %s", cmd.Name, cmd.ArgsUsage)
	}
	return cmd.Args().First(), nil
}

// socketOptions builds socket options from the global flags.
func socketOptions(cmd *cli.Command) (socket.Options, error) {
	opts := socket.Options{Timeout: cmd.Duration("timeout")}
	level, err := socket.ParseLogLevel(cmd.String("log-level"))
	if err != nil {
		return opts, errors.Wrap(errUsage, err.Error())
	}
	opts.LogLevel = level
	return opts, nil
}

func createIPv4Command() *cli.Command {
	return &cli.Command{
		Name:      "ipv4",
		Usage:     "parse an IPv4 address and print it with its numeric value",
		ArgsUsage: "<address>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			s, err := oneArg(cmd)
			if err != nil {
				return err
			}
			addr, err := ip.ParseIPv4(s)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.Root().Writer, "%s\t%d\n", addr, addr.Uint32())
			return nil
		},
	}
}

func createIPv6Command() *cli.Command {
	return &cli.Command{
		Name:      "ipv6",
		Usage:     "parse an IPv6 address and print it",
		ArgsUsage: "<address>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "full",
				Aliases: []string{"f"},
				Usage:   "print all eight groups",
			},
			&cli.BoolFlag{
				Name:    "embed",
				Aliases: []string{"e"},
				Usage:   "print the last four bytes in dotted decimal notation",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			s, err := oneArg(cmd)
			if err != nil {
				return err
			}
			addr, err := ip.ParseIPv6(s)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.Root().Writer, addr.Format(!cmd.Bool("full"), cmd.Bool("embed")))
			return nil
		},
	}
}

func createAddrCommand() *cli.Command {
	return &cli.Command{
		Name:      "addr",
		Usage:     "parse an ip:port or [ipv6]:port socket address",
		ArgsUsage: "<address>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			s, err := oneArg(cmd)
			if err != nil {
				return err
			}
			var text string
			var raw []byte
			if strings.HasPrefix(s, "[") {
				addr, err := ip.ParseAddrV6(s)
				if err != nil {
					return err
				}
				text, raw = addr.String(), addr.Raw()
			} else {
				addr, err := ip.ParseAddrV4(s)
				if err != nil {
					return err
				}
				text, raw = addr.String(), addr.Raw()
			}
			fmt.Fprintf(cmd.Root().Writer, "%s\t%x\n", text, raw)
			return nil
		},
	}
}

func createMaskCommand() *cli.Command {
	return &cli.Command{
		Name:      "mask",
		Usage:     "print the netmask of a prefix length",
		ArgsUsage: "<prefix>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "v6",
				Usage: "print an IPv6 netmask",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			s, err := oneArg(cmd)
			if err != nil {
				return err
			}
			limit := 32
			if cmd.Bool("v6") {
				limit = 128
			}
			prefix, err := strconv.Atoi(s)
			if err != nil || prefix < 0 || prefix > limit {
				return errors.Wrapf(ip.ErrMalformedInput, "prefix %q must be in 0..%d", s, limit)
			}
			if cmd.Bool("v6") {
				fmt.Fprintln(cmd.Root().Writer, ip.IPv6Mask(prefix))
			} else {
				fmt.Fprintln(cmd.Root().Writer, ip.IPv4Mask(prefix))
			}
			return nil
		},
	}
}

func createResolveCommand() *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "resolve a host name",
		ArgsUsage: "<host>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "v6",
				Usage: "look up an IPv6 address",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			host, err := oneArg(cmd)
			if err != nil {
				return err
			}
			if d := cmd.Duration("timeout"); d > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, d)
				defer cancel()
			}

			var addr fmt.Stringer
			if cmd.Bool("v6") {
				addr, err = socket.ResolveIPv6(ctx, host)
			} else {
				addr, err = socket.ResolveIPv4(ctx, host)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.Root().Writer, addr)
			return nil
		},
	}
}

func createIfaddrsCommand() *cli.Command {
	return &cli.Command{
		Name:      "ifaddrs",
		Usage:     "list interface addresses",
		ArgsUsage: "[interface]",
		Action: func(_ context.Context, cmd *cli.Command) error {
			var names []string
			switch cmd.Args().Len() {
			case 0:
				var err error
				if names, err = ifconfig.Interfaces(); err != nil {
					return err
				}
			case 1:
				names = []string{cmd.Args().First()}
			default:
				return errors.Wrapf(errUsage, "%s expects at most one argument", cmd.Name)
			}

			w := cmd.Root().Writer
			for _, name := range names {
				mtu, err := ifconfig.MTU(name)
				if err != nil {
					return err
				}
				addrs, err := ifconfig.Addresses(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\tmtu %d\n", name, mtu)
				for _, a := range addrs {
					fmt.Fprintf(w, "\t%s\n", a)
				}
			}
			return nil
		},
	}
}

func createServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run an echo server until interrupted",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML or JSON config file",
			},
			&cli.StringFlag{
				Name:  "listen",
				Usage: "listen address, ip:port or [ipv6]:port",
				Value: "127.0.0.1:10000",
			},
			&cli.StringFlag{
				Name:  "network",
				Usage: "udp or tcp",
				Value: "udp",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := serveConfig(cmd)
			if err != nil {
				return err
			}

			srv, err := socket.NewServer(cfg.Network, cfg.Listen, cfg.opts)
			if err != nil {
				return err
			}
			defer srv.Close()

			log := logrus.WithFields(logrus.Fields{
				"network": cfg.Network,
				"listen":  srv.LocalAddr(),
			})
			log.Info("echo server started")
			err = srv.Serve(ctx)
			log.Info("echo server stopped")
			return err
		},
	}
}

// serveConfig merges the config file with the command line. Flags given
// explicitly win over the file.
func serveConfig(cmd *cli.Command) (*config, error) {
	cfg := &config{}
	if fname := cmd.String("config"); fname != "" {
		var err error
		if cfg, err = readConfig(fname); err != nil {
			return nil, err
		}
	}

	if cfg.Listen == "" || cmd.IsSet("listen") {
		cfg.Listen = cmd.String("listen")
	}
	if cfg.Network == "" || cmd.IsSet("network") {
		cfg.Network = cmd.String("network")
	}
	if cfg.Timeout == "" || cmd.IsSet("timeout") {
		cfg.Timeout = cmd.Duration("timeout").String()
	}
	if cfg.LogLevel == "" || cmd.IsSet("log-level") {
		cfg.LogLevel = cmd.String("log-level")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(errUsage, err.Error())
	}
	return cfg, nil
}

func createSendCommand() *cli.Command {
	return &cli.Command{
		Name:      "send",
		Usage:     "send a message and print the reply",
		ArgsUsage: "<address> <message>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "network",
				Usage: "udp or tcp",
				Value: "udp",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 2 {
				return errors.Wrapf(errUsage, "%s expects two arguments: %s", cmd.Name, cmd.ArgsUsage)
			}
			opts, err := socketOptions(cmd)
			if err != nil {
				return err
			}
			target, msg := cmd.Args().Get(0), []byte(cmd.Args().Get(1))

			var reply []byte
			if strings.HasPrefix(target, "[") {
				reply, err = sendTo(ip.ParseAddrV6, cmd.String("network"), target, msg, opts)
			} else {
				reply, err = sendTo(ip.ParseAddrV4, cmd.String("network"), target, msg, opts)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.Root().Writer, "%s\n", reply)
			return nil
		},
	}
}

func sendTo[A socket.Family](parse func(string) (A, error), network, target string, msg []byte, opts socket.Options) ([]byte, error) {
	addr, err := parse(target)
	if err != nil {
		return nil, err
	}
	switch network {
	case "udp":
		return exchangeUDP(addr, msg, opts)
	case "tcp":
		return exchangeTCP(addr, msg, opts)
	}
	return nil, errors.Wrapf(errUsage, "unknown network %q", network)
}

func exchangeUDP[A socket.Family](addr A, msg []byte, opts socket.Options) ([]byte, error) {
	s := socket.NewUDP[A](socket.Client, opts)
	if err := s.Open(addr); err != nil {
		return nil, err
	}
	defer s.Close()

	if _, err := s.Send(msg); err != nil {
		return nil, err
	}
	buf := make([]byte, 65535)
	n, err := s.Recv(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// exchangeTCP reads until as many bytes as were sent came back.
func exchangeTCP[A socket.Family](addr A, msg []byte, opts socket.Options) ([]byte, error) {
	s := socket.NewTCP[A](socket.Client, opts)
	if err := s.Open(addr); err != nil {
		return nil, err
	}
	defer s.Close()

	if _, err := s.Send(msg); err != nil {
		return nil, err
	}
	reply := make([]byte, 0, len(msg))
	buf := make([]byte, 4096)
	for deadline := time.Now().Add(opts.Timeout); len(reply) < len(msg); {
		n, err := s.Recv(buf)
		if err != nil {
			return nil, err
		}
		reply = append(reply, buf[:n]...)
		if opts.Timeout > 0 && time.Now().After(deadline) {
			return nil, errors.Wrap(socket.ErrTimeout, "partial reply")
		}
	}
	return reply, nil
}
