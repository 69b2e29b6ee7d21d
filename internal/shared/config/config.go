package config

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"sync"

	"DeepHabitat/modules/kit/errx"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// decodeHook 让配置里可以直接写 "10s"、"200ms" 这类时长，以及逗号分隔的列表。
var decodeHook = viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
	mapstructure.StringToTimeDurationHookFunc(),
	mapstructure.StringToSliceHookFunc(","),
))

// reloadMu 串行化热更新回调与首次加载，避免并发写同一个目标结构体。
var reloadMu sync.Mutex

func load(configPath string, out any) {
	if !fileExist(configPath) {
		panic(fmt.Sprintf("config file not exist, configPath=%v", configPath))
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.OnConfigChange(func(e fsnotify.Event) {
		reloadMu.Lock()
		defer reloadMu.Unlock()
		log.Println("配置文件变更", e.Name)
		if err := v.Unmarshal(out, decodeHook); err != nil {
			// 热更新失败保留旧值，不让进程因为一次手误退出
			log.Printf("viper unmarshal change config data failed, err=%v\n", err)
		}
	})
	v.WatchConfig()

	reloadMu.Lock()
	defer reloadMu.Unlock()
	if err := v.ReadInConfig(); err != nil {
		panic(err)
	}
	if err := v.Unmarshal(out, decodeHook); err != nil {
		panic(err)
	}
}

// LoadBytes 从内存读取配置（例如 go:embed 的静态表），不监听变更。
// configType 为 viper 支持的格式名：json / yaml / toml ...
func LoadBytes(raw []byte, configType string, out any) error {
	v := viper.New()
	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(raw)); err != nil {
		return errx.ErrConfigInvalid.WithData("type", configType).WithCause(err)
	}
	if err := v.Unmarshal(out, decodeHook); err != nil {
		return errx.ErrConfigInvalid.WithData("type", configType).WithCause(err)
	}
	return nil
}

func fileExist(fileName string) bool {
	_, err := os.Stat(fileName)
	return err == nil
}
