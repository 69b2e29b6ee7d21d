package config

import (
	"os"
	"path/filepath"
)

// Load 加载配置文件并反序列化到 out，失败直接 panic（进程启动期调用）。
//
// 约定：
//  1. cfgName 为绝对路径时直接使用；
//  2. cfgName 为相对路径时，从当前目录开始逐级向上查找 cfgName；
//  3. cfgName 为空时按 2 查找 configs/conf.yml。
func Load(cfgName string, out any) {
	if cfgName == "" {
		cfgName = defaultConfigRelPath
	}
	if filepath.IsAbs(cfgName) {
		load(cfgName, out)
		return
	}
	curDir, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	load(findConfigUpward(curDir, cfgName), out)
}

const defaultConfigRelPath = "configs/conf.yml"

func findConfigUpward(startDir, rel string) string {
	dir := startDir
	for {
		candidate := filepath.Join(dir, rel)
		if fileExist(candidate) {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			panic("config file not exist, searched " + rel + " from: " + startDir)
		}
		dir = parent
	}
}
