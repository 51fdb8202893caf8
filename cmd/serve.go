package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vasu1712/hushgroup-backend/internal/anonmsg"
	"github.com/Vasu1712/hushgroup-backend/internal/groups"
	"github.com/Vasu1712/hushgroup-backend/internal/identity"
	"github.com/Vasu1712/hushgroup-backend/internal/invite"
	"github.com/Vasu1712/hushgroup-backend/internal/server"
	"github.com/Vasu1712/hushgroup-backend/internal/ws"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/valkey-io/valkey-go"
)

var (
	host string
	port int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server for handling API requests",
	Run: func(cmd *cobra.Command, args []string) {
		commonSetUp()
		if cmd.Flags().Changed("host") {
			appCfg.Host = host
		}
		if cmd.Flags().Changed("port") {
			appCfg.Port = port
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		st, err := openStores(ctx, appCfg.Storage)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open storage")
		}
		defer st.close()

		hub := ws.NewHub(log.Logger)
		go hub.Run(ctx)

		var notifier anonmsg.Notifier = hub
		if appCfg.Valkey.Addr != "" {
			client, err := valkey.NewClient(valkey.ClientOption{InitAddress: []string{appCfg.Valkey.Addr}})
			if err != nil {
				log.Fatal().Err(err).Msg("failed to connect to Valkey")
			}
			defer client.Close()

			relay := ws.NewRelay(client, hub, log.Logger)
			go func() {
				if err := relay.Run(ctx); err != nil {
					log.Error().Err(err).Msg("inbox relay stopped")
				}
			}()
			notifier = relay
			log.Info().Str("addr", appCfg.Valkey.Addr).Msg("relaying inbox events through Valkey")
		}

		dir := st.users
		groupService := groups.NewService(st.groups, invite.RandomGenerator{}, dir, log.Logger,
			groups.WithCodeAttempts(appCfg.Invite.MaxAttempts))
		router := anonmsg.NewRouter(st.groups, st.messages, notifier, log.Logger)

		srv := &http.Server{
			Addr: appCfg.Addr(),
			Handler: server.NewRouter(server.Options{
				BasePath:      appCfg.BasePath,
				AllowedOrigin: appCfg.AllowedOrigin,
				Resolver:      identity.NewJWTResolver(appCfg.Auth.JWTSecret, dir),
				Directory:     dir,
				Groups:        groupService,
				Messages:      router,
				Hub:           hub,
				Ping:          st.ping,
			}),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("server shutdown failed")
			}
		}()

		log.Info().Msgf("Server started at %s", appCfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("could not start server")
		}
		log.Info().Msg("Server stopped")
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&host, "host", "0.0.0.0", "host to run the server on")
	serveCmd.Flags().IntVar(&port, "port", 8080, "port to run the server on")
}
