/*
 * Copyright 2025 Olake By Datazip
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package destination

import (
	"context"

	"github.com/datazip-inc/olake-clubspeed/types"
)

type Config interface {
	Validate() error
}

type Writer interface {
	GetConfigRef() Config
	Spec() any
	Type() string
	// Sets up connections and perform checks; doesn't load Streams
	//
	// Note: Check shouldn't be called before Setup as they're composed at Connector level
	Check(ctx context.Context) error
	// Setup sets up a Writer for dedicated use for a stream
	Setup(stream types.StreamInterface, opts *Options) error
	// Write is called once per emitted record, in emission order
	Write(ctx context.Context, record types.Record) error
	// WriteState is called with a snapshot of the bookmarks at every checkpoint
	WriteState(ctx context.Context, state *types.State) error
	Close(ctx context.Context) error
}
