// Package options aggregates the command line and config file options of the oracle server.
package options

import (
	genericoptions "github.com/kiosk404/oracle/internal/pkg/options"
	"github.com/kiosk404/oracle/pkg/logger"
	"github.com/kiosk404/oracle/pkg/utils/cliflag"
	"github.com/kiosk404/oracle/pkg/utils/json"
)

type Options struct {
	GenericServerRunOptions *genericoptions.ServerRunOptions `json:"server" mapstructure:"server"`
	GRPCOptions             *genericoptions.GRPCOptions      `json:"grpc"   mapstructure:"grpc"`
	Log                     *logger.Options                  `json:"log"    mapstructure:"log"`
	ModelOptions            *genericoptions.ModelOptions     `json:"model"  mapstructure:"model"`
	ToolsOptions            *ToolsOptions                    `json:"tools"  mapstructure:"tools"`
	StoreOptions            *StoreOptions                    `json:"store"  mapstructure:"store"`
	ChatOptions             *ChatOptions                     `json:"chat"   mapstructure:"chat"`
	MCPOptions              *MCPOptions                      `json:"mcp"    mapstructure:"mcp"`
	AuthOptions             *AuthOptions                     `json:"auth"   mapstructure:"auth"`
}

func NewOptions() *Options {
	return &Options{
		GenericServerRunOptions: genericoptions.NewServerRunOptions(),
		GRPCOptions:             genericoptions.NewGRPCOptions(),
		Log:                     logger.NewOptions(),
		ModelOptions:            genericoptions.NewModelOptions(),
		ToolsOptions:            NewToolsOptions(),
		StoreOptions:            NewStoreOptions(),
		ChatOptions:             NewChatOptions(),
		MCPOptions:              NewMCPOptions(),
		AuthOptions:             NewAuthOptions(),
	}
}

func (o *Options) Flags() (fss cliflag.NamedFlagSets) {
	o.GenericServerRunOptions.AddFlags(fss.FlagSet("generic"))
	o.GRPCOptions.AddFlags(fss.FlagSet("grpc"))
	o.Log.AddFlags(fss.FlagSet("log"))
	o.ModelOptions.AddFlags(fss.FlagSet("model"))
	o.ToolsOptions.AddFlags(fss.FlagSet("tools"))
	o.StoreOptions.AddFlags(fss.FlagSet("store"))
	o.ChatOptions.AddFlags(fss.FlagSet("chat"))
	o.MCPOptions.AddFlags(fss.FlagSet("mcp"))
	o.AuthOptions.AddFlags(fss.FlagSet("auth"))
	return fss
}

// Validate checks every option group and returns all problems found.
func (o *Options) Validate() []error {
	var errs []error
	errs = append(errs, o.GenericServerRunOptions.Validate()...)
	errs = append(errs, o.GRPCOptions.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	errs = append(errs, o.ModelOptions.Validate()...)
	errs = append(errs, o.ToolsOptions.Validate()...)
	errs = append(errs, o.StoreOptions.Validate()...)
	errs = append(errs, o.ChatOptions.Validate()...)
	errs = append(errs, o.MCPOptions.Validate()...)
	errs = append(errs, o.AuthOptions.Validate()...)
	return errs
}

// Complete set default Options.
func (o *Options) Complete() error {
	if len(o.GenericServerRunOptions.Middlewares) == 0 {
		o.GenericServerRunOptions.Middlewares = NewOptions().GenericServerRunOptions.Middlewares
	}
	return nil
}

func (o *Options) String() string {
	data, _ := json.Marshal(o)

	return string(data)
}
