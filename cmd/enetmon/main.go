// Command enetmon connects to an eNet gateway, maintains its device
// inventory, and logs state/brightness changes as they arrive.
package main

import (
	"context"
	"flag"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/davecgh/go-spew/spew"

	"github.com/MatusOllah/slogcolor"
	"gopkg.in/yaml.v3"

	"github.com/enet-go/enet"
	"github.com/enet-go/enet/device"
)

const configFile = "config.yaml"

var (
	addr      = flag.String("addr", "127.0.0.1:8888", "eNet gateway host:port")
	isVerbose = flag.Bool("verbose", false, "Enable display of DEBUG log messages")
)

// config holds per-device display-name overrides, keyed by channel
// number as a decimal string, round-tripping the YAML file's comments
// and formatting via a yaml.Node.
type config struct {
	mu    sync.RWMutex
	names map[string]string // channel number (decimal string) -> display name
	yaml  yaml.Node
}

func (c *config) load(fn string) error {
	data, err := os.ReadFile(fn)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := yaml.Unmarshal(data, &c.yaml); err != nil {
		return err
	}
	return yaml.Unmarshal(data, &c.names)
}

func (c *config) write(fn string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	newNames := maps.Clone(c.names)

	var mapping *yaml.Node
	if len(c.yaml.Content) == 0 {
		mapping = &yaml.Node{Kind: yaml.MappingNode}
		c.yaml.Content = append(c.yaml.Content, mapping)
	} else {
		mapping = c.yaml.Content[0]
	}

	for i := 0; i < len(mapping.Content); i += 2 {
		delete(newNames, mapping.Content[i].Value)
	}

	if len(newNames) == 0 {
		slog.Debug("not writing out config, no new data to add", "fn", fn)
		return nil
	}

	for k, v := range newNames {
		yk := &yaml.Node{Kind: yaml.ScalarNode, Value: k, Tag: "!!str", Style: yaml.DoubleQuotedStyle}
		yv := &yaml.Node{Kind: yaml.ScalarNode, Value: v, Tag: "!!str", Style: yaml.DoubleQuotedStyle}
		mapping.Content = append(mapping.Content, yk, yv)
	}

	f, err := os.CreateTemp(".", strings.Join([]string{".", fn, "*"}, ""))
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	defer enc.Close()

	if err := enc.Encode(&c.yaml); err != nil {
		return err
	}

	return os.Rename(f.Name(), fn)
}

// displayName returns the configured override for a channel number,
// recording the gateway's own name the first time it's seen.
func (c *config) displayName(number uint32, gatewayName string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := strconv.FormatUint(uint64(number), 10)
	if c.names == nil {
		c.names = make(map[string]string)
	}
	name, found := c.names[key]
	if !found {
		c.names[key] = gatewayName
		return gatewayName
	}
	return name
}

func main() {
	flag.Parse()

	opts := slogcolor.DefaultOptions
	if *isVerbose {
		opts.Level = slog.LevelDebug
	} else {
		opts.Level = slog.LevelInfo
	}
	logger := slog.New(slogcolor.NewHandler(os.Stderr, opts))
	slog.SetDefault(logger)

	conf := &config{}
	if err := conf.load(configFile); err != nil {
		if os.IsNotExist(err) {
			slog.Warn("configuration file does not exist", "fn", configFile)
		} else {
			slog.Error("unable to load configuration file", "fn", configFile, "err", err)
		}
	} else {
		slog.Debug("loaded configuration", "fn", configFile)
	}
	defer func() {
		if err := conf.write(configFile); err != nil {
			slog.Error("error writing out configuration file", "fn", configFile, "err", err)
		} else {
			slog.Info("wrote out config", "fn", configFile)
		}
	}()

	client, err := enet.NewClient(*addr, logger)
	if err != nil {
		slog.Error("failed to connect to gateway", "addr", *addr, "err", err)
		os.Exit(1)
	}
	defer client.Close()

	slog.Info("connected", "version", client.Version())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer stop()

	changes := make(chan string, 64)
	for _, d := range client.Devices() {
		name := conf.displayName(d.Number(), d.Name())
		go watchDevice(ctx, d, name, changes)
	}

	slog.Info("starting main loop")
	for {
		select {
		case msg := <-changes:
			slog.Info(msg)
		case <-time.After(10 * time.Second):
			slog.Info("status", "stats", client.Stats())
			if err := conf.write(configFile); err != nil {
				slog.Error("periodic config write failed", "err", err)
			}
		case <-ctx.Done():
			slog.Info("exiting due to signal")
			return
		}
	}
}

// watchDevice logs state (and, for dimmers, brightness) changes for
// one device until ctx is canceled.
func watchDevice(ctx context.Context, d *device.Device, name string, changes chan<- string) {
	stateCh, cancelState := d.SubscribeState()
	defer cancelState()

	var brightnessCh <-chan device.Brightness
	if d.Kind() == device.KindDimmer {
		ch, cancel, err := d.SubscribeBrightness()
		if err == nil {
			brightnessCh = ch
			defer cancel()
		}
	}

	for {
		select {
		case state := <-stateCh:
			changes <- spew.Sprintf("%s (#%d) state -> %v", name, d.Number(), state)
		case brightness, ok := <-brightnessCh:
			if ok {
				changes <- spew.Sprintf("%s (#%d) brightness -> %d", name, d.Number(), brightness)
			}
		case <-ctx.Done():
			return
		}
	}
}
